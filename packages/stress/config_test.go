package stress

import (
	"testing"
	"time"

	"github.com/abdul-hamid-achik/jiraload/packages/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, VUMode, cfg.Mode)
	assert.Equal(t, 30*time.Second, cfg.Duration)
	assert.Equal(t, 10, cfg.VUs)
	assert.Equal(t, 50, cfg.MaxVUs)
	assert.Equal(t, time.Second, cfg.ThinkTime)
	assert.NoError(t, cfg.Validate())
}

func TestParseMode(t *testing.T) {
	for input, want := range map[string]ExecutionMode{"": VUMode, "vu": VUMode, "VU": VUMode, "rate": RateMode} {
		got, err := ParseMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseMode("burst")
	assert.Error(t, err)
	assert.Equal(t, "rate", RateMode.String())
}

func TestFromSettings(t *testing.T) {
	t.Run("empty keeps defaults", func(t *testing.T) {
		cfg, err := FromSettings(config.StressConfig{})
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("rate mode", func(t *testing.T) {
		cfg, err := FromSettings(config.StressConfig{
			Mode:       "rate",
			Duration:   "2m",
			Rate:       25,
			MaxVUs:     40,
			ThinkTime:  "0s",
			RampUp:     "10s",
			Thresholds: "p95<2s,errors<5%",
		})
		require.NoError(t, err)
		assert.Equal(t, RateMode, cfg.Mode)
		assert.Equal(t, 2*time.Minute, cfg.Duration)
		assert.Equal(t, float64(25), cfg.Rate)
		assert.Equal(t, 40, cfg.MaxVUs)
		assert.Zero(t, cfg.ThinkTime)
		assert.Equal(t, 10*time.Second, cfg.RampUp)
		assert.Equal(t, 2*time.Second, cfg.Thresholds.P95)
		assert.InDelta(t, 0.05, cfg.Thresholds.ErrorRate, 0.0001)
	})

	t.Run("max VUs grows with VUs", func(t *testing.T) {
		cfg, err := FromSettings(config.StressConfig{VUs: 80})
		require.NoError(t, err)
		assert.Equal(t, 80, cfg.MaxVUs)
	})

	t.Run("errors", func(t *testing.T) {
		for _, s := range []config.StressConfig{
			{Mode: "burst"},
			{Duration: "soon"},
			{Thresholds: "p95>1s"},
			{Duration: "10s", RampUp: "1m"},
		} {
			_, err := FromSettings(s)
			assert.Error(t, err, s)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid VU mode config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "valid rate mode config",
			config: &Config{
				Mode:     RateMode,
				Duration: 30 * time.Second,
				Rate:     10,
				MaxVUs:   100,
			},
			wantErr: false,
		},
		{
			name: "invalid duration",
			config: &Config{
				Mode:     RateMode,
				Duration: 0,
				Rate:     10,
				MaxVUs:   100,
			},
			wantErr: true,
		},
		{
			name: "invalid rate in rate mode",
			config: &Config{
				Mode:     RateMode,
				Duration: 30 * time.Second,
				Rate:     0,
				MaxVUs:   100,
			},
			wantErr: true,
		},
		{
			name: "invalid VUs in VU mode",
			config: &Config{
				Mode:     VUMode,
				Duration: 30 * time.Second,
				VUs:      0,
				MaxVUs:   100,
			},
			wantErr: true,
		},
		{
			name: "invalid maxVUs",
			config: &Config{
				Mode:     RateMode,
				Duration: 30 * time.Second,
				Rate:     10,
				MaxVUs:   0,
			},
			wantErr: true,
		},
		{
			name: "negative think time",
			config: &Config{
				Mode:      VUMode,
				Duration:  30 * time.Second,
				VUs:       1,
				MaxVUs:    1,
				ThinkTime: -time.Second,
			},
			wantErr: true,
		},
		{
			name: "rampUp exceeds duration",
			config: &Config{
				Mode:     RateMode,
				Duration: 30 * time.Second,
				Rate:     10,
				MaxVUs:   100,
				RampUp:   60 * time.Second,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseThresholds(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Thresholds
		wantErr  bool
	}{
		{
			name:     "p95 threshold",
			input:    "p95<200ms",
			expected: Thresholds{P95: 200 * time.Millisecond},
		},
		{
			name:     "max latency",
			input:    "max<=5s",
			expected: Thresholds{MaxLatency: 5 * time.Second},
		},
		{
			name:     "error rate percentage",
			input:    "errors<1%",
			expected: Thresholds{ErrorRate: 0.01},
		},
		{
			name:     "error rate decimal",
			input:    "errors<0.001",
			expected: Thresholds{ErrorRate: 0.001},
		},
		{
			name:     "with spaces",
			input:    "p95 < 200ms, errors < 1%",
			expected: Thresholds{P95: 200 * time.Millisecond, ErrorRate: 0.01},
		},
		{
			name:     "rps threshold",
			input:    "rps>50",
			expected: Thresholds{MinRPS: 50},
		},
		{
			name:    "wrong direction",
			input:   "rps<50",
			wantErr: true,
		},
		{
			name:    "invalid format",
			input:   "invalid",
			wantErr: true,
		},
		{
			name:    "invalid metric",
			input:   "unknown<100",
			wantErr: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: Thresholds{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseThresholds(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected.P95, result.P95)
			assert.Equal(t, tt.expected.MaxLatency, result.MaxLatency)
			assert.InDelta(t, tt.expected.ErrorRate, result.ErrorRate, 0.0001)
			assert.Equal(t, tt.expected.MinRPS, result.MinRPS)
			assert.Equal(t, tt.input != "", result.HasThresholds())
		})
	}
}
