package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-action-bot-go/internal/models"
)

func maConfig() *models.Config {
	cfg := testConfig()
	cfg.Strategy = "ma_cross"
	cfg.FastWindow = 2
	cfg.SlowWindow = 3
	return cfg
}

// closeBar builds a bar around a close with a fixed 1.0 range.
func closeBar(i int, close float64) models.Bar {
	return mkBar(i, close, close+0.5, close-0.5, close)
}

func TestMACrossLongOnUpwardCross(t *testing.T) {
	s := NewMACross(maConfig())

	closes := []float64{10, 10, 10, 13}
	var sig *models.Signal
	for i, c := range closes {
		sig = s.OnBar(closeBar(i, c), i)
		if i < len(closes)-1 {
			assert.Nil(t, sig, "bar %d", i)
		}
	}

	require.NotNil(t, sig)
	assert.Equal(t, models.DirectionLong, sig.Direction)
	assert.Equal(t, 3, sig.Index)
	assert.InDelta(t, 13, sig.EntryPrice, 1e-9)
	// risk distance is the mean bar range (1.0), target honors rr=2
	assert.InDelta(t, 12, sig.StopLoss, 1e-9)
	assert.InDelta(t, 15, sig.TakeProfit, 1e-9)
}

func TestMACrossShortOnDownwardCross(t *testing.T) {
	s := NewMACross(maConfig())

	var sig *models.Signal
	for i, c := range []float64{10, 10, 10, 7} {
		sig = s.OnBar(closeBar(i, c), i)
	}

	require.NotNil(t, sig)
	assert.Equal(t, models.DirectionShort, sig.Direction)
	assert.InDelta(t, 7, sig.EntryPrice, 1e-9)
	assert.InDelta(t, 8, sig.StopLoss, 1e-9)
	assert.InDelta(t, 5, sig.TakeProfit, 1e-9)
}

func TestMACrossSilentUntilWindowFills(t *testing.T) {
	s := NewMACross(maConfig())

	// the very first full-window bar can never signal: no prior
	// averages to cross against
	assert.Nil(t, s.OnBar(closeBar(0, 10), 0))
	assert.Nil(t, s.OnBar(closeBar(1, 11), 1))
	assert.Nil(t, s.OnBar(closeBar(2, 12), 2))
}

func TestMACrossNoSignalWithoutCross(t *testing.T) {
	s := NewMACross(maConfig())

	// steadily rising closes keep fast above slow: a single cross at
	// most, never repeated signals while the relation holds
	var count int
	for i, c := range []float64{10, 11, 12, 13, 14, 15, 16} {
		if s.OnBar(closeBar(i, c), i) != nil {
			count++
		}
	}
	assert.LessOrEqual(t, count, 1)
}
