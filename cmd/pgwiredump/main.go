// Command pgwiredump decodes, classifies, and inspects Postgres wire
// protocol traffic using the pgproto/pgtype codec.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nxpg/pgproto/internal/demo"
	"github.com/nxpg/pgproto/pgproto"
)

const sessionFrameDirection = "backend"

var (
	cfgFile     string
	logLevel    string
	interactive bool
)

var cfg *demo.Config

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

var rootCmd = &cobra.Command{
	Use:   "pgwiredump",
	Short: "Decode and inspect Postgres v3 wire protocol traffic",
	Long: `pgwiredump decodes captured Postgres wire protocol traffic using the
pgproto/pgtype codec: list the messages in a capture, browse them
interactively, classify the SQL text they carry, or compute an MD5
auth response by hand.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		loaded, err := demo.Load(cfgFile, v)
		if err != nil {
			return err
		}
		cfg = loaded
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		demo.SetLevel(cfg.Log.Level)
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode [capture-file...]",
	Short: "Decode a captured stream of backend messages",
	Long: `decode reads a file containing raw Postgres backend-message bytes
and prints each frame it finds. With --interactive, it opens a TUI
browser over the decoded frames instead of printing them. Given more
than one candidate path, decode prompts for which one to use.`,
	RunE: runDecode,
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Save or replay a recorded capture session",
}

var sessionSaveCmd = &cobra.Command{
	Use:   "save <capture-file> <session-file>",
	Short: "Decode a capture and save it as a named, replayable session",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionSave,
}

var sessionLoadCmd = &cobra.Command{
	Use:   "load <session-file>",
	Short: "Replay a saved session, printing each frame it decodes to",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionLoad,
}

var handshakeCmd = &cobra.Command{
	Use:   "handshake",
	Short: "Build and print a startup handshake message",
	Long: `handshake prompts for connection parameters (or reads them from
flags) and prints the hex-encoded StartupMessage a frontend would send
to begin a session.`,
	RunE: runHandshake,
}

var classifyCmd = &cobra.Command{
	Use:   "classify <sql>",
	Short: "Classify a SQL statement's type and referenced tables",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Compute an MD5 authentication response",
	Long: `auth computes the salted MD5 password token a frontend sends in
response to an AuthenticationMD5Password request, given a username,
password, and 4-byte hex-encoded salt.`,
	RunE: runAuth,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	decodeCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse decoded frames in a TUI")

	handshakeCmd.Flags().String("host", "", "server host")
	handshakeCmd.Flags().String("port", "", "server port")
	handshakeCmd.Flags().String("user", "", "username")
	handshakeCmd.Flags().String("database", "", "database name")

	authCmd.Flags().String("user", "", "username")
	authCmd.Flags().String("password", "", "password")
	authCmd.Flags().String("salt", "", "4-byte salt, hex-encoded")
	_ = authCmd.MarkFlagRequired("user")
	_ = authCmd.MarkFlagRequired("password")
	_ = authCmd.MarkFlagRequired("salt")

	sessionCmd.AddCommand(sessionSaveCmd, sessionLoadCmd)
	rootCmd.AddCommand(decodeCmd, handshakeCmd, classifyCmd, authCmd, sessionCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	path := cfg.Capture.Path
	switch {
	case len(args) == 1:
		path = args[0]
	case len(args) > 1:
		chosen, err := demo.SelectCapture(args)
		if err != nil {
			return err
		}
		path = chosen
	}
	if path == "" {
		return fmt.Errorf("no capture file given: pass a path or set capture.path in the config")
	}

	if interactive || cfg.Output.Interactive {
		return demo.RunInspector(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading capture: %w", err)
	}

	frames, err := demo.DecodeFrames(data)
	if err != nil {
		return fmt.Errorf("decoding capture: %w", err)
	}
	demo.Info("decoded capture", "path", path, "frames", len(frames))

	for i, f := range frames {
		fmt.Printf("%4d  %-22T  %d bytes\n", i, f.Message, len(f.Raw))
	}
	return nil
}

func runHandshake(cmd *cobra.Command, args []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetString("port")
	user, _ := cmd.Flags().GetString("user")
	database, _ := cmd.Flags().GetString("database")

	var details demo.ConnectionDetails
	if host == "" && port == "" && user == "" && database == "" {
		var err error
		details, err = demo.ConnectionForm()
		if err != nil {
			return err
		}
	} else {
		details = demo.ConnectionDetails{Host: host, Port: port, User: user, Database: database}
	}

	params := []pgproto.KeyValue{
		{Key: "user", Value: details.User},
		{Key: "database", Value: details.Database},
	}
	msg, err := pgproto.AppendStartupMessage(nil, params)
	if err != nil {
		return fmt.Errorf("building startup message: %w", err)
	}

	demo.Info("built startup message", "host", details.Host, "port", details.Port, "user", details.User)
	fmt.Println(hex.EncodeToString(msg))
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	cq, err := demo.Classify(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Type: %s\n", cq.Type)
	if len(cq.Tables) == 0 {
		fmt.Println("Tables: (none)")
		return nil
	}
	fmt.Println("Tables:")
	for _, t := range cq.Tables {
		fmt.Println("  " + t.QualifiedName())
	}
	return nil
}

func runAuth(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	password, _ := cmd.Flags().GetString("password")
	saltHex, _ := cmd.Flags().GetString("salt")

	saltBytes, err := hex.DecodeString(saltHex)
	if err != nil || len(saltBytes) != 4 {
		return fmt.Errorf("salt must be 4 bytes, hex-encoded")
	}
	var salt [4]byte
	copy(salt[:], saltBytes)

	fmt.Println(pgproto.AuthenticationMd5PasswordResponse(user, password, salt))
	return nil
}

func runSessionSave(cmd *cobra.Command, args []string) error {
	capturePath, sessionPath := args[0], args[1]

	data, err := os.ReadFile(capturePath)
	if err != nil {
		return fmt.Errorf("reading capture: %w", err)
	}
	frames, err := demo.DecodeFrames(data)
	if err != nil {
		return fmt.Errorf("decoding capture: %w", err)
	}

	if _, err := os.Stat(sessionPath); err == nil {
		overwrite, err := demo.ConfirmInteractive(fmt.Sprintf("%s already exists, overwrite?", sessionPath))
		if err != nil {
			return err
		}
		if !overwrite {
			return fmt.Errorf("not overwriting %s", sessionPath)
		}
	}

	session := &demo.Session{Name: capturePath}
	for _, f := range frames {
		session.Frames = append(session.Frames, demo.SessionFrame{
			Direction: sessionFrameDirection,
			HexBytes:  hex.EncodeToString(f.Raw),
		})
	}
	if err := session.Save(sessionPath); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	demo.Info("saved session", "path", sessionPath, "frames", len(session.Frames))
	return nil
}

func runSessionLoad(cmd *cobra.Command, args []string) error {
	session, err := demo.LoadSession(args[0])
	if err != nil {
		return err
	}
	demo.Info("loaded session", "name", session.Name, "frames", len(session.Frames))

	for i, f := range session.Frames {
		raw, err := hex.DecodeString(f.HexBytes)
		if err != nil {
			return fmt.Errorf("frame %d: decoding hex: %w", i, err)
		}
		frames, err := demo.DecodeFrames(raw)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		for _, fr := range frames {
			fmt.Printf("%4d  [%s]  %-22T  %d bytes\n", i, f.Direction, fr.Message, len(fr.Raw))
		}
	}
	return nil
}
