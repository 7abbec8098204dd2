package pgproto

import (
	"crypto/md5" //nolint:gosec // required by the Postgres wire protocol, not a security choice
	"encoding/hex"
)

// AuthenticationMd5PasswordResponse computes the salted double-hash
// password token for the MD5 authentication mode (component E,
// spec.md §4.E): concat("md5", md5(concat(hex(md5(concat(password,
// username))), salt))). MD5 is mandated by the protocol; this function
// makes no security claim about it.
func AuthenticationMd5PasswordResponse(user, password string, salt [4]byte) string {
	inner := md5.Sum([]byte(password + user)) //nolint:gosec // protocol-mandated
	innerHex := hex.EncodeToString(inner[:])
	outer := md5.Sum(append([]byte(innerHex), salt[:]...)) //nolint:gosec // protocol-mandated
	return "md5" + hex.EncodeToString(outer[:])
}
