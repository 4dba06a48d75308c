// Package config loads nymview settings from a TOML file, then applies
// NYMVIEW_* environment overrides. Command line flags are applied last by
// the caller.
//
// Environment keys are NYMVIEW_<SECTION>_<FIELD>, for example
// NYMVIEW_CLIENT_URL or NYMVIEW_BROWSER_FRAME_INTERVAL.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/olivoil/nymview/internal/mixnet"
)

const (
	appName   = "nymview"
	envPrefix = "NYMVIEW"
)

// Config holds all application configuration.
type Config struct {
	Client  ClientConfig  `toml:"client"`
	Browser BrowserConfig `toml:"browser"`
	Log     LogConfig     `toml:"log"`
	Theme   ThemeConfig   `toml:"theme"`
}

// ClientConfig describes how to reach the local nym-client.
type ClientConfig struct {
	URL            string   `toml:"url"`
	ConnectTimeout Duration `toml:"connect_timeout" split_words:"true"`
}

// BrowserConfig holds browsing behaviour.
type BrowserConfig struct {
	// Home is opened once the client is connected. Empty shows the welcome page.
	Home          string   `toml:"home"`
	FrameInterval Duration `toml:"frame_interval" split_words:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// ThemeConfig overrides palette colors. Empty fields keep the built-in color.
type ThemeConfig struct {
	Accent     string `toml:"accent"`
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Dim        string `toml:"dim"`
	Red        string `toml:"red"`
	Green      string `toml:"green"`
	Yellow     string `toml:"yellow"`
	Blue       string `toml:"blue"`
	Border     string `toml:"border"`
	Header     string `toml:"header"`
}

// Duration is a time.Duration written as "5s" or "100ms" in files and
// environment variables.
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats d as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			URL:            mixnet.DefaultURL,
			ConnectTimeout: Duration(10 * time.Second),
		},
		Browser: BrowserConfig{
			FrameInterval: Duration(100 * time.Millisecond),
		},
		Log: LogConfig{
			Level: "info",
			File:  DefaultLogPath(),
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, appName, "config.toml")
}

// DefaultLogPath returns where the log file goes when none is configured.
func DefaultLogPath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, _ := os.UserHomeDir()
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, appName, appName+".log")
}

// Load reads the file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile parses the TOML file at path over the defaults.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}
	return cfg, nil
}

// Validate checks values a file or the environment may have broken.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Client.URL, "ws://") && !strings.HasPrefix(c.Client.URL, "wss://") {
		return fmt.Errorf("client url %q: must be a ws:// or wss:// address", c.Client.URL)
	}
	if c.Client.ConnectTimeout <= 0 {
		return fmt.Errorf("client connect_timeout must be positive")
	}
	if c.Browser.FrameInterval <= 0 {
		return fmt.Errorf("browser frame_interval must be positive")
	}
	return nil
}
