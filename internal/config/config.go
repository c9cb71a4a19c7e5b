// Package config loads ciscope settings from defaults, a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kamilpajak/ciscope/internal/llm"
	"github.com/kamilpajak/ciscope/pkg/models"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".ciscope.yaml"

// ErrMissingCredential is returned when the provider API key is not set.
var ErrMissingCredential = errors.New("missing credential")

// Config holds all settings of a ciscope run.
type Config struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
	Timeout   string `yaml:"timeout"`

	RepoDir           string  `yaml:"repo_dir"`
	ResultsPath       string  `yaml:"results_path"`
	OutputPath        string  `yaml:"output_path"`
	CoveragePath      string  `yaml:"coverage_path"`
	ReportPath        string  `yaml:"report_path"`
	CoverageThreshold float64 `yaml:"coverage_threshold"`

	DatabaseURL    string `yaml:"database_url"`
	ScreenshotPath string `yaml:"screenshot_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider:          string(llm.ProviderAnthropic),
		MaxTokens:         llm.DefaultMaxTokens,
		Timeout:           llm.DefaultTimeout.String(),
		RepoDir:           ".",
		ResultsPath:       "test-results.json",
		OutputPath:        "test-output.txt",
		CoveragePath:      "coverage.xml",
		ReportPath:        "analysis-report.html",
		CoverageThreshold: models.DefaultCoverageThreshold,
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error. getenv is usually os.Getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if getenv != nil {
		cfg.applyEnvOverrides(getenv)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv("CISCOPE_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := getenv("CISCOPE_MODEL"); v != "" {
		c.Model = v
	}
	if v := getenv("CISCOPE_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := getenv("CISCOPE_DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
}

// Validate checks the configuration for values no run can use.
func (c *Config) Validate() error {
	if !llm.ValidProvider(llm.Provider(c.Provider)) {
		return fmt.Errorf("invalid provider: %q (valid: anthropic, openai, google)", c.Provider)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	d, err := c.TimeoutDuration()
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.CoverageThreshold < 0 || c.CoverageThreshold > 1 {
		return fmt.Errorf("coverage_threshold must be within [0,1], got %g", c.CoverageThreshold)
	}
	return nil
}

// TimeoutDuration parses the model request timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

// CredentialEnv names the environment variable holding the API key.
func (c *Config) CredentialEnv() string {
	return llm.CredentialEnv(llm.Provider(c.Provider))
}

// APIKey resolves the provider API key through getenv.
func (c *Config) APIKey(getenv func(string) string) (string, error) {
	env := c.CredentialEnv()
	key := getenv(env)
	if key == "" {
		return "", fmt.Errorf("%w: %s not set", ErrMissingCredential, env)
	}
	return key, nil
}

// LLMOptions converts the configuration into provider client options.
func (c *Config) LLMOptions(apiKey string) (llm.Options, error) {
	d, err := c.TimeoutDuration()
	if err != nil {
		return llm.Options{}, err
	}
	return llm.Options{
		Provider:  llm.Provider(c.Provider),
		Model:     c.Model,
		APIKey:    apiKey,
		BaseURL:   c.BaseURL,
		MaxTokens: c.MaxTokens,
		Timeout:   d,
	}, nil
}
