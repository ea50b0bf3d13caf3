// Package config provides YAML configuration parsing for the opwatch CLI.
//
// This package enables running opwatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	api_base: https://example.googleapis.com/v1
//	request_timeout: 30s
//	headers:
//	  Authorization: "Bearer ${TOKEN}"
//
//	poll:
//	  initial_delay: 2s
//	  max_delay: 10s
//	  multiplier: 1.5
//	  jitter: true
//	  timeout: 10m      # or "none" to wait forever
//
//	progress_field: metadata.progressPercent
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// minPollDelay is the minimum allowed delay between polls. This prevents
// accidental DoS of the operations API with overly aggressive polling.
const minPollDelay = 100 * time.Millisecond

// Config is the root configuration structure for the opwatch CLI.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// APIBase is the operations API root, including the version prefix,
	// e.g. "https://example.googleapis.com/v1".
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	APIBase string `yaml:"api_base"`

	// Headers are custom HTTP headers sent with every request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// RequestTimeout is the budget for one status-check round trip.
	// Accepts duration strings like "10s", "1m", "500ms". Defaults to 30s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// Poll configures the wait cadence and deadline.
	Poll PollConfig `yaml:"poll"`

	// ProgressField is a dot-notation path into operation metadata whose
	// value is logged on every poll, e.g. "progressPercent". Empty
	// disables progress logging.
	ProgressField string `yaml:"progress_field"`
}

// PollConfig defines the poll cadence and wait deadline.
type PollConfig struct {
	// InitialDelay is the delay before the first poll. Defaults to 1s.
	InitialDelay Duration `yaml:"initial_delay"`

	// MaxDelay is the backoff ceiling. Defaults to 10s.
	MaxDelay Duration `yaml:"max_delay"`

	// Multiplier is the per-attempt delay growth factor. Values at or
	// below 1.0 give a fixed interval. Defaults to 1.5.
	Multiplier float64 `yaml:"multiplier"`

	// Jitter randomizes each delay within [delay/2, delay].
	// Defaults to true.
	Jitter *bool `yaml:"jitter"`

	// Timeout bounds the total wall-clock time of a wait. Accepts a
	// duration string or "none" to wait forever. Defaults to "none".
	Timeout WaitTimeout `yaml:"timeout"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// WaitTimeout is a wait deadline that can be explicitly unbounded.
//
// In YAML it is either a duration string ("10m") or the literal "none" /
// "unbounded". The zero value means "not set", which [Parse] resolves to
// unbounded.
type WaitTimeout struct {
	set       bool
	unbounded bool
	d         time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler for WaitTimeout.
func (t *WaitTimeout) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "unbounded":
		*t = WaitTimeout{set: true, unbounded: true}
		return nil
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid timeout %q (expected a duration or \"none\"): %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", parsed)
	}

	*t = WaitTimeout{set: true, d: parsed}
	return nil
}

// Unbounded reports whether the wait has no deadline.
func (t WaitTimeout) Unbounded() bool {
	return t.unbounded || !t.set
}

// Duration returns the deadline as a duration; only meaningful when
// Unbounded reports false.
func (t WaitTimeout) Duration() time.Duration {
	return t.d
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in APIBase and header values.
// Defaults are applied for RequestTimeout (30s), the poll cadence
// (1s initial, 10s max, 1.5x, jitter on), and the wait timeout (none).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = Duration(30 * time.Second)
	}
	if cfg.Poll.InitialDelay == 0 {
		cfg.Poll.InitialDelay = Duration(1 * time.Second)
	}
	if cfg.Poll.MaxDelay == 0 {
		cfg.Poll.MaxDelay = Duration(10 * time.Second)
	}
	if cfg.Poll.Multiplier == 0 {
		cfg.Poll.Multiplier = 1.5
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a Config for the given API base with all defaults
// applied, for callers that configure via flags instead of a file.
func Default(apiBase string) (*Config, error) {
	cfg := &Config{
		APIBase:        apiBase,
		RequestTimeout: Duration(30 * time.Second),
		Poll: PollConfig{
			InitialDelay: Duration(1 * time.Second),
			MaxDelay:     Duration(10 * time.Second),
			Multiplier:   1.5,
		},
	}
	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.APIBase == "" {
		return fmt.Errorf("api_base is required")
	}
	expanded, err := expandEnvVars(c.APIBase)
	if err != nil {
		return fmt.Errorf("api_base: %w", err)
	}
	c.APIBase = expanded

	parsedURL, err := url.Parse(c.APIBase)
	if err != nil {
		return fmt.Errorf("invalid api_base: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("api_base scheme must be http or https, got %q", parsedURL.Scheme)
	}

	for k, v := range c.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		c.Headers[k] = expanded
	}

	if c.RequestTimeout.Duration() < 0 {
		return fmt.Errorf("request_timeout cannot be negative, got %s", c.RequestTimeout.Duration())
	}

	if c.Poll.InitialDelay.Duration() < minPollDelay {
		return fmt.Errorf("poll.initial_delay must be at least %s, got %s",
			minPollDelay, c.Poll.InitialDelay.Duration())
	}
	if c.Poll.MaxDelay.Duration() < c.Poll.InitialDelay.Duration() {
		return fmt.Errorf("poll.max_delay (%s) must not be less than poll.initial_delay (%s)",
			c.Poll.MaxDelay.Duration(), c.Poll.InitialDelay.Duration())
	}
	if c.Poll.Multiplier < 1 {
		return fmt.Errorf("poll.multiplier must be at least 1.0, got %g", c.Poll.Multiplier)
	}

	return nil
}
