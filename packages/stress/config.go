// Package stress runs Jira user sessions under load. It supports a fixed
// pool of virtual users with think time, or a constant iteration rate, and
// collects latency histograms, error kinds and threshold results per action.
package stress

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/jiraload/packages/core/config"
)

// ExecutionMode defines how the runner schedules actions
type ExecutionMode int

const (
	// RateMode starts actions at a constant rate (iterations per second)
	RateMode ExecutionMode = iota
	// VUMode runs a fixed number of virtual users, each one action at a time
	VUMode
)

func (m ExecutionMode) String() string {
	if m == RateMode {
		return "rate"
	}
	return "vu"
}

// ParseMode accepts "vu" and "rate". An empty string means VU mode.
func ParseMode(s string) (ExecutionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vu", "vus":
		return VUMode, nil
	case "rate":
		return RateMode, nil
	}
	return VUMode, fmt.Errorf("unknown stress mode %q", s)
}

// Config holds all configuration for a stress run
type Config struct {
	Mode       ExecutionMode
	Duration   time.Duration
	Rate       float64       // iterations per second (RateMode)
	VUs        int           // number of virtual users (VUMode)
	MaxVUs     int           // max concurrent sessions
	ThinkTime  time.Duration // pause between two actions of one VU
	RampUp     time.Duration
	Thresholds Thresholds
}

// Thresholds defines pass/fail criteria for the run
type Thresholds struct {
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
	MaxLatency time.Duration
	ErrorRate  float64 // maximum error rate (0.0 - 1.0)
	MinRPS     float64
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:      VUMode,
		Duration:  30 * time.Second,
		Rate:      10,
		VUs:       10,
		MaxVUs:    50,
		ThinkTime: time.Second,
	}
}

// FromSettings builds a Config from the stress section of the config file.
// Empty settings keep their defaults.
func FromSettings(s config.StressConfig) (*Config, error) {
	c := DefaultConfig()

	mode, err := ParseMode(s.Mode)
	if err != nil {
		return nil, err
	}
	c.Mode = mode

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"duration", s.Duration, &c.Duration},
		{"thinkTime", s.ThinkTime, &c.ThinkTime},
		{"rampUp", s.RampUp, &c.RampUp},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = v
	}

	if s.Rate > 0 {
		c.Rate = s.Rate
	}
	if s.VUs > 0 {
		c.VUs = s.VUs
	}
	if s.MaxVUs > 0 {
		c.MaxVUs = s.MaxVUs
	}
	if c.Mode == VUMode && c.MaxVUs < c.VUs {
		c.MaxVUs = c.VUs
	}

	c.Thresholds, err = ParseThresholds(s.Thresholds)
	if err != nil {
		return nil, err
	}
	return c, c.Validate()
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}

	if c.Mode == RateMode && c.Rate <= 0 {
		return fmt.Errorf("rate must be positive in rate mode")
	}

	if c.Mode == VUMode && c.VUs <= 0 {
		return fmt.Errorf("VUs must be positive in VU mode")
	}

	if c.MaxVUs < 1 {
		return fmt.Errorf("maxVUs must be at least 1")
	}

	if c.ThinkTime < 0 {
		return fmt.Errorf("thinkTime cannot be negative")
	}

	if c.RampUp < 0 {
		return fmt.Errorf("rampUp cannot be negative")
	}

	if c.RampUp > c.Duration {
		return fmt.Errorf("rampUp cannot exceed duration")
	}

	return nil
}

var thresholdPattern = regexp.MustCompile(`^(\w+)\s*([<>]=?)\s*(.+)$`)

// ParseThresholds parses a threshold string like "p95<2s,errors<5%"
func ParseThresholds(s string) (Thresholds, error) {
	var t Thresholds

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if err := parseThresholdPart(part, &t); err != nil {
			return t, err
		}
	}

	return t, nil
}

func parseThresholdPart(part string, t *Thresholds) error {
	matches := thresholdPattern.FindStringSubmatch(part)
	if len(matches) != 4 {
		return fmt.Errorf("invalid threshold format: %s", part)
	}

	metric := strings.ToLower(matches[1])
	op := matches[2]
	value := strings.TrimSpace(matches[3])
	upper := op == "<" || op == "<="

	latency := func(name string, dst *time.Duration) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", name, value)
		}
		if !upper {
			return fmt.Errorf("%s threshold must use < or <=", name)
		}
		*dst = d
		return nil
	}

	switch metric {
	case "p50":
		return latency("p50", &t.P50)
	case "p95":
		return latency("p95", &t.P95)
	case "p99":
		return latency("p99", &t.P99)
	case "max", "maxlatency":
		return latency("max latency", &t.MaxLatency)

	case "errors", "error", "errorrate":
		percent := strings.HasSuffix(value, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil {
			return fmt.Errorf("invalid error rate: %s", value)
		}
		if percent {
			f /= 100
		}
		if !upper {
			return fmt.Errorf("error rate threshold must use < or <=")
		}
		t.ErrorRate = f

	case "rps", "rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid RPS: %s", value)
		}
		if upper {
			return fmt.Errorf("RPS threshold must use > or >=")
		}
		t.MinRPS = f

	default:
		return fmt.Errorf("unknown threshold metric: %s", metric)
	}

	return nil
}

// HasThresholds returns true if any thresholds are configured
func (t *Thresholds) HasThresholds() bool {
	return t.P50 > 0 || t.P95 > 0 || t.P99 > 0 || t.MaxLatency > 0 || t.ErrorRate > 0 || t.MinRPS > 0
}

// ThresholdResult holds the result of evaluating a threshold
type ThresholdResult struct {
	Name     string
	Passed   bool
	Expected string
	Actual   string
}
