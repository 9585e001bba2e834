package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/jiraload/packages/core/env"
	"gopkg.in/yaml.v3"
)

// Config represents the jiraload configuration
type Config struct {
	BaseURL     string            `yaml:"baseURL"`
	Resources   string            `yaml:"resources,omitempty"` // empty uses the embedded store
	Dataset     string            `yaml:"dataset"`
	Timeout     int               `yaml:"timeout,omitempty"` // milliseconds
	ValidateSSL *bool             `yaml:"validateSSL,omitempty"`
	Proxy       string            `yaml:"proxy,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"` // sent on every request
	Stress      StressConfig      `yaml:"stress"`
	Actions     map[string]int    `yaml:"actions,omitempty"` // action name to weight
	Notify      NotifyConfig      `yaml:"notify,omitempty"`
	Verbose     *bool             `yaml:"verbose,omitempty"`
	NoColor     *bool             `yaml:"noColor,omitempty"`
}

// StressConfig is the load shape of a run. Durations use time.ParseDuration
// syntax.
type StressConfig struct {
	Mode       string  `yaml:"mode,omitempty"` // "vu" or "rate"
	Duration   string  `yaml:"duration,omitempty"`
	Rate       float64 `yaml:"rate,omitempty"` // iterations per second in rate mode
	VUs        int     `yaml:"vus,omitempty"`
	MaxVUs     int     `yaml:"maxVUs,omitempty"`
	ThinkTime  string  `yaml:"thinkTime,omitempty"`
	RampUp     string  `yaml:"rampUp,omitempty"`
	Thresholds string  `yaml:"thresholds,omitempty"` // e.g. "p95<2s,errors<5%"
}

// NotifyConfig holds chat webhooks told about the outcome of a run
type NotifyConfig struct {
	Slack        string `yaml:"slack,omitempty"` // webhook URL
	SlackChannel string `yaml:"slackChannel,omitempty"`
	Teams        string `yaml:"teams,omitempty"` // webhook URL
	On           string `yaml:"on,omitempty"`    // always, failure or success
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns the request timeout.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	"jiraload.yaml",
	"jiraload.yml",
	".jiraload.yaml",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse expands ${VAR} references in data and decodes it over the defaults.
func Parse(data []byte) (*Config, error) {
	expanded := env.NewExpander().Expand(string(data))

	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Resources != "" {
		result.Resources = other.Resources
	}
	if other.Dataset != "" {
		result.Dataset = other.Dataset
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}

	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	result.Stress = c.Stress.merge(other.Stress)

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(c.Headers)+len(other.Headers))
		for k, v := range c.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	if len(other.Actions) > 0 {
		result.Actions = other.Actions
	}

	if other.Notify.Slack != "" {
		result.Notify.Slack = other.Notify.Slack
	}
	if other.Notify.SlackChannel != "" {
		result.Notify.SlackChannel = other.Notify.SlackChannel
	}
	if other.Notify.Teams != "" {
		result.Notify.Teams = other.Notify.Teams
	}
	if other.Notify.On != "" {
		result.Notify.On = other.Notify.On
	}

	return &result
}

func (s StressConfig) merge(other StressConfig) StressConfig {
	if other.Mode != "" {
		s.Mode = other.Mode
	}
	if other.Duration != "" {
		s.Duration = other.Duration
	}
	if other.Rate > 0 {
		s.Rate = other.Rate
	}
	if other.VUs > 0 {
		s.VUs = other.VUs
	}
	if other.MaxVUs > 0 {
		s.MaxVUs = other.MaxVUs
	}
	if other.ThinkTime != "" {
		s.ThinkTime = other.ThinkTime
	}
	if other.RampUp != "" {
		s.RampUp = other.RampUp
	}
	if other.Thresholds != "" {
		s.Thresholds = other.Thresholds
	}
	return s
}

// Validate reports every problem found in the configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.BaseURL == "" {
		errs = append(errs, errors.New("baseURL is required"))
	}
	if c.Dataset == "" {
		errs = append(errs, errors.New("dataset is required"))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout cannot be negative"))
	}

	switch c.Stress.Mode {
	case "", "vu", "rate":
	default:
		errs = append(errs, fmt.Errorf("stress.mode must be vu or rate, got %q", c.Stress.Mode))
	}
	for name, value := range map[string]string{
		"stress.duration":  c.Stress.Duration,
		"stress.thinkTime": c.Stress.ThinkTime,
		"stress.rampUp":    c.Stress.RampUp,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	switch c.Notify.On {
	case "", "always", "failure", "success":
	default:
		errs = append(errs, fmt.Errorf("notify.on must be always, failure or success, got %q", c.Notify.On))
	}

	for name, weight := range c.Actions {
		if weight < 0 {
			errs = append(errs, fmt.Errorf("actions.%s: weight cannot be negative", name))
		}
	}

	return errors.Join(errs...)
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
