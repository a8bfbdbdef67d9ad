package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/peek/internal/format"
	"github.com/born-ml/peek/internal/safetensors"
)

// EnvConfigPath names the environment variable consulted when no --config flag is given.
const EnvConfigPath = "PEEK_CONFIG"

// Config drives every peek command. Zero values are filled from Default().
type Config struct {
	Path      string `yaml:"path"`
	Tensor    string `yaml:"tensor"`
	Count     int    `yaml:"count"`
	Framework string `yaml:"framework"`
	Strict    bool   `yaml:"strict"`

	Mmap       bool   `yaml:"mmap"`
	Validation string `yaml:"validation"`

	Workers int `yaml:"workers"`

	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsFile string `yaml:"metrics_file"`
}

// Default reproduces the classic one-liner: the first ten values of
// _conv_stem in ./net.safetensors, printed the way torch prints them.
func Default() Config {
	return Config{
		Path:       "./net.safetensors",
		Tensor:     "_conv_stem",
		Count:      10,
		Framework:  "pt",
		Mmap:       true,
		Validation: "strict",
		Workers:    4,
		LogLevel:   "info",
		LogFormat:  "console",
	}
}

// Load reads a YAML file over Default(). Keys absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	//nolint:gosec // G304: config path comes from the command line.
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// LoadFromEnv loads the file named by PEEK_CONFIG, or returns Default() when it is unset.
func LoadFromEnv() (Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Path == "" {
		errs = append(errs, errors.New("path must not be empty"))
	}
	if c.Count < 0 {
		errs = append(errs, fmt.Errorf("invalid count: %d (must be >= 0)", c.Count))
	}
	if _, err := format.ParseFramework(c.Framework); err != nil {
		errs = append(errs, fmt.Errorf("invalid framework: %w", err))
	}
	if _, err := safetensors.ParseValidationLevel(c.Validation); err != nil {
		errs = append(errs, fmt.Errorf("invalid validation level: %w", err))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("invalid workers: %d (must be positive)", c.Workers))
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format: %q (expected console or json)", c.LogFormat))
	}
	return errors.Join(errs...)
}
