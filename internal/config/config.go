package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Discovery settings
	TestCasePattern string   `yaml:"testcase_pattern"`
	ManifestPattern string   `yaml:"manifest_pattern"`
	PathsToIgnore   []string `yaml:"paths_to_ignore"`

	// File check settings
	Prefix string `yaml:"prefix"`

	// Output settings
	Output          string `yaml:"output"`
	OutputTailBytes int    `yaml:"output_tail_bytes"`

	// Execution settings
	Platform    string `yaml:"platform"`
	Interpreter string `yaml:"interpreter"`

	// Record results in the MySQL history table
	Record bool `yaml:"record"`
	// Exit nonzero when a test case failed
	FailExit bool `yaml:"fail_exit"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Flags holds command-line flags
type Flags struct {
	ConfigFile  string
	Verbose     bool
	Prefix      string
	Output      string
	Platform    string
	Interpreter string
	NameFilter  string
	Record      bool
	FailExit    bool
	NoProgress  bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		TestCasePattern: DefaultTestCasePattern,
		ManifestPattern: DefaultManifestPattern,
		OutputTailBytes: DefaultOutputTailBytes,
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// LoadFile reads a YAML configuration file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	if cfg.OutputTailBytes < 0 {
		return nil, fmt.Errorf("output_tail_bytes must not be negative, got %d", cfg.OutputTailBytes)
	}
	return cfg, nil
}

// LoadEnv loads envFile (if it exists) into the process environment and applies
// INSTCHECK_* overrides.
func (c *Config) LoadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if v := os.Getenv(EnvPrefix + "PLATFORM"); v != "" {
		c.Platform = v
	}
	if v := os.Getenv(EnvPrefix + "INTERPRETER"); v != "" {
		c.Interpreter = v
	}
	if v := os.Getenv(EnvPrefix + "PREFIX"); v != "" {
		c.Prefix = v
	}
	return nil
}

// ApplyFlags copies flags into the config; set flags win over file and environment.
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags

	if flags.Prefix != "" {
		c.Prefix = flags.Prefix
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Platform != "" {
		c.Platform = flags.Platform
	}
	if flags.Interpreter != "" {
		c.Interpreter = flags.Interpreter
	}
	if flags.Record {
		c.Record = true
	}
	if flags.FailExit {
		c.FailExit = true
	}
}

// GetPlatform returns the lower-cased platform identifier test cases are
// filtered against.
func (c *Config) GetPlatform() string {
	if p := strings.TrimSpace(c.Platform); p != "" {
		return strings.ToLower(p)
	}
	return HostPlatform(runtime.GOOS)
}

// HostPlatform maps a GOOS value to the identifier used in test case configs.
func HostPlatform(goos string) string {
	switch goos {
	case "darwin":
		return "macos"
	default:
		return goos
	}
}
