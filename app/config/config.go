package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Version is reported by INFO.
const Version = "7.0.0"

// Config holds the application configuration
type Config struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	LogLevel  string `yaml:"loglevel"`
	LogFormat string `yaml:"logformat"`

	// HTTPAddress enables the HTTP query front end when set.
	HTTPAddress string `yaml:"http"`

	// DumpPath enables snapshots when set.
	DumpPath     string        `yaml:"dump"`
	SaveInterval time.Duration `yaml:"save_interval"`
	SaveChanges  int64         `yaml:"save_changes"`
	Restore      bool          `yaml:"restore"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Host:         "127.0.0.1",
		Port:         6379,
		LogLevel:     "info",
		LogFormat:    "text",
		SaveInterval: 60 * time.Second,
		SaveChanges:  1,
		Restore:      true,
	}
}

// Environment variables read by ApplyEnv.
const (
	EnvHost       = "REDIS_HOST"
	EnvPort       = "REDIS_PORT"
	EnvLogLevel   = "REDIS_LOGLEVEL"
	EnvConfigFile = "REDIS_CONFIG_FILE"
)

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays the REDIS_* environment variables onto c.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHost); ok && v != "" {
		c.Host = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// BindFlags registers the command-line flags, with c's current values as
// defaults. Parsed flags write straight into c.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Host, "host", c.Host, "Address to bind the server to")
	fs.IntVarP(&c.Port, "port", "p", c.Port, "Port to bind the server to")
	fs.StringVar(&c.LogLevel, "loglevel", c.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "logformat", c.LogFormat, "Log format (text, json)")
	fs.StringVar(&c.HTTPAddress, "http", c.HTTPAddress, "Serve the HTTP query API on this address")
	fs.StringVar(&c.DumpPath, "dump", c.DumpPath, "Snapshot database file; empty disables snapshots")
	fs.DurationVar(&c.SaveInterval, "save-interval", c.SaveInterval, "How often to check for unsaved changes")
	fs.Int64Var(&c.SaveChanges, "save-changes", c.SaveChanges, "Writes needed before an autosave")
	fs.BoolVar(&c.Restore, "restore", c.Restore, "Restore the last snapshot on start")
}

// ApplyFlags copies onto c the flags of set the user actually passed, so
// flags override file and environment values without their defaults doing so.
func (c *Config) ApplyFlags(set *pflag.FlagSet) error {
	own := pflag.NewFlagSet("config", pflag.ContinueOnError)
	c.BindFlags(own)

	var err error
	set.Visit(func(f *pflag.Flag) {
		if err != nil || own.Lookup(f.Name) == nil {
			return
		}
		if setErr := own.Set(f.Name, f.Value.String()); setErr != nil {
			err = fmt.Errorf("flag --%s: %w", f.Name, setErr)
		}
	})
	return err
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.DumpPath != "" && c.SaveInterval < 0 {
		errs = append(errs, errors.New("save_interval must not be negative"))
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// GetAddress returns the server address
func (c *Config) GetAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GetPort returns the server port
func (c *Config) GetPort() int {
	return c.Port
}

// GetServerInfo returns server information for INFO command
func (c *Config) GetServerInfo() map[string]string {
	persistence := "disabled"
	if c.DumpPath != "" {
		persistence = "sqlite"
	}
	return map[string]string{
		"redis_version": Version,
		"redis_mode":    "standalone",
		"tcp_port":      strconv.Itoa(c.Port),
		"role":          "master",
		"process_id":    strconv.Itoa(os.Getpid()),
		"persistence":   persistence,
	}
}
