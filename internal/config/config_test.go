package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-action-bot-go/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"symbol": "BTCUSDT"}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", cfg.Symbol)
	assert.Equal(t, 2, cfg.SwingRadius)
	assert.Equal(t, 2, cfg.TrendLookbackSwing)
	assert.Equal(t, 14, cfg.RangeWindow)
	assert.InDelta(t, 1.0, cfg.BufferMultiplier, 1e-9)
	assert.Equal(t, 64, cfg.MaxZoneHistory)
	assert.InDelta(t, 2.0, cfg.RiskRewardRatio, 1e-9)
	assert.InDelta(t, 0.1, cfg.StopLossMargin, 1e-9)
	assert.Equal(t, []string{"bullish_engulfing", "bearish_engulfing"}, cfg.AllowedPatterns)
	assert.Equal(t, "price_action", cfg.Strategy)
	assert.Equal(t, "1m", cfg.WatchInterval)
	assert.Equal(t, 30, cfg.WebSocketPingIntervalSec)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"symbol": "ETHUSDT",
		"swing_radius": 3,
		"range_window": 20,
		"buffer_multiplier": 0.5,
		"risk_reward_ratio": 3,
		"allowed_patterns": ["hammer"],
		"strategy": "ma_cross",
		"fast_window": 5,
		"slow_window": 15
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.SwingRadius)
	assert.Equal(t, 20, cfg.RangeWindow)
	assert.InDelta(t, 0.5, cfg.BufferMultiplier, 1e-9)
	assert.Equal(t, []string{"hammer"}, cfg.AllowedPatterns)
	assert.Equal(t, "ma_cross", cfg.Strategy)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadConfigMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"symbol": `)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		field   string
	}{
		{"negative swing radius", `{"swing_radius": -1}`, "swing_radius"},
		{"buffer multiplier below zero", `{"buffer_multiplier": -2}`, "buffer_multiplier"},
		{"zone history too small", `{"max_zone_history": 1}`, "max_zone_history"},
		{"negative stop loss margin", `{"stop_loss_margin": -0.5}`, "stop_loss_margin"},
		{"unknown pattern", `{"allowed_patterns": ["doji"]}`, "allowed_patterns"},
		{"unknown strategy", `{"strategy": "grid"}`, "strategy"},
		{"negative fast window", `{"strategy": "ma_cross", "fast_window": -1}`, "fast_window"},
		{"negative slow window", `{"strategy": "ma_cross", "slow_window": -5}`, "slow_window"},
		{"fast window not below slow", `{"strategy": "ma_cross", "fast_window": 21, "slow_window": 21}`, "fast_window"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			var ce *models.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}
