package demo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the CLI's own settings: where to read captured wire
// traffic from, how to render decoded output, and at what level to log.
// It mirrors the teacher's upstream/proxy/storage/telemetry sections
// trimmed to what a decode/classify/inspect tool actually needs.
type Config struct {
	Capture CaptureConfig `mapstructure:"capture"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
}

// CaptureConfig locates the wire traffic to decode.
type CaptureConfig struct {
	Path string `mapstructure:"path"`
}

// OutputConfig controls how decoded messages are rendered.
type OutputConfig struct {
	Format      string `mapstructure:"format"` // loaded but not read: decode always prints text
	Interactive bool   `mapstructure:"interactive"`
}

// LogConfig controls the CLI's own logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{Format: "text"},
		Log:    LogConfig{Level: "info"},
	}
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pgwiredump"
	}
	return filepath.Join(home, ".pgwiredump")
}

// Load loads configuration from an optional file, environment
// variables (PGWIREDUMP_*), and whatever flags the caller has already
// bound into v.
func Load(configPath string, v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	defaults := DefaultConfig()
	v.SetDefault("capture.path", defaults.Capture.Path)
	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.interactive", defaults.Output.Interactive)
	v.SetDefault("log.level", defaults.Log.Level)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(defaultConfigDir())
	}

	v.SetEnvPrefix("pgwiredump")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// SessionFrame is one recorded frame in a replayable capture session.
type SessionFrame struct {
	Direction string `yaml:"direction"` // "frontend" or "backend"
	HexBytes  string `yaml:"hex"`
}

// Session is a capture-session descriptor: an ordered list of frames
// to feed through pgproto for offline inspection, stored as
// `.pgsession.yaml` alongside a raw capture.
type Session struct {
	Name   string         `yaml:"name"`
	Frames []SessionFrame `yaml:"frames"`
}

// LoadSession reads a session descriptor from path.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	return &s, nil
}

// Save writes s to path as YAML.
func (s *Session) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
