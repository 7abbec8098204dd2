package pgproto

import "testing"

func TestAuthenticationMd5PasswordResponse(t *testing.T) {
	salt := [4]byte{0x2a, 0x3d, 0x8f, 0xe0}
	got := AuthenticationMd5PasswordResponse("md5_user", "password", salt)
	want := "md562af4dd09bbb41884907a838a3233294"
	if got != want {
		t.Fatalf("AuthenticationMd5PasswordResponse: got %q, want %q", got, want)
	}
}

func TestAuthenticationMd5PasswordResponsePrefix(t *testing.T) {
	got := AuthenticationMd5PasswordResponse("postgres", "secret", [4]byte{1, 2, 3, 4})
	if len(got) != 35 || got[:3] != "md5" {
		t.Fatalf("expected 35-char md5-prefixed token, got %q (%d chars)", got, len(got))
	}
}
