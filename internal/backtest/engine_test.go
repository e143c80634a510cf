package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-action-bot-go/internal/models"
)

// scriptedStrategy emits pre-planned signals keyed by bar index.
type scriptedStrategy struct {
	signals map[int]*models.Signal
}

func (s *scriptedStrategy) Name() string { return "scripted" }

func (s *scriptedStrategy) OnBar(bar models.Bar, index int) *models.Signal {
	return s.signals[index]
}

func tb(i int, o, h, l, c float64) models.Bar {
	return models.Bar{
		Timestamp: time.Unix(int64(i)*60, 0),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    1,
	}
}

func longSignal(index int, entry, stop, target float64) *models.Signal {
	return &models.Signal{
		Index:      index,
		Direction:  models.DirectionLong,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
	}
}

func shortSignal(index int, entry, stop, target float64) *models.Signal {
	return &models.Signal{
		Index:      index,
		Direction:  models.DirectionShort,
		EntryPrice: entry,
		StopLoss:   stop,
		TakeProfit: target,
	}
}

func TestEngineLongTargetExit(t *testing.T) {
	strat := &scriptedStrategy{signals: map[int]*models.Signal{
		0: longSignal(0, 100, 95, 105),
	}}
	e := NewEngine("TESTUSDT", strat)

	res, err := e.Run([]models.Bar{
		tb(0, 100, 101, 99, 100),
		tb(1, 100, 103, 99.5, 102),
		tb(2, 102, 106, 101, 105.5), // high tags the target
	})
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	trade := res.Trades[0]
	assert.Equal(t, models.ExitTarget, trade.ExitReason)
	assert.Equal(t, 0, trade.EntryIndex)
	assert.Equal(t, 2, trade.ExitIndex)
	assert.InDelta(t, 105, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 5, trade.PnL, 1e-9)
	assert.Equal(t, 1, res.Summary.WinningTrades)
}

func TestEngineStopTakesPrecedenceOverTarget(t *testing.T) {
	strat := &scriptedStrategy{signals: map[int]*models.Signal{
		0: longSignal(0, 100, 95, 105),
	}}
	e := NewEngine("TESTUSDT", strat)

	// one violent bar spans both levels: the conservative reading wins
	res, err := e.Run([]models.Bar{
		tb(0, 100, 101, 99, 100),
		tb(1, 100, 106, 94, 101),
	})
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, models.ExitStop, res.Trades[0].ExitReason)
	assert.InDelta(t, 95, res.Trades[0].ExitPrice, 1e-9)
	assert.InDelta(t, -5, res.Trades[0].PnL, 1e-9)
}

func TestEngineShortExits(t *testing.T) {
	strat := &scriptedStrategy{signals: map[int]*models.Signal{
		0: shortSignal(0, 100, 105, 95),
	}}
	e := NewEngine("TESTUSDT", strat)

	res, err := e.Run([]models.Bar{
		tb(0, 100, 101, 99, 100),
		tb(1, 99, 100, 94.5, 95.5), // low tags the short target
	})
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, models.ExitTarget, res.Trades[0].ExitReason)
	assert.InDelta(t, 95, res.Trades[0].ExitPrice, 1e-9)
	assert.InDelta(t, 5, res.Trades[0].PnL, 1e-9)
}

func TestEngineForceClosesAtEndOfData(t *testing.T) {
	strat := &scriptedStrategy{signals: map[int]*models.Signal{
		0: longSignal(0, 100, 90, 120),
	}}
	e := NewEngine("TESTUSDT", strat)

	res, err := e.Run([]models.Bar{
		tb(0, 100, 101, 99, 100),
		tb(1, 100, 102, 99, 101),
		tb(2, 101, 103, 100, 102),
	})
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	trade := res.Trades[0]
	assert.Equal(t, models.ExitEndOfData, trade.ExitReason)
	assert.Equal(t, 2, trade.ExitIndex)
	assert.InDelta(t, 102, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 2, trade.PnL, 1e-9)

	// the last equity point reflects the forced settlement
	require.Len(t, res.EquityCurve, 3)
	assert.InDelta(t, 2, res.EquityCurve[2], 1e-9)
}

func TestEngineIgnoresSignalsWhileInPosition(t *testing.T) {
	strat := &scriptedStrategy{signals: map[int]*models.Signal{
		0: longSignal(0, 100, 90, 120),
		1: longSignal(1, 101, 91, 121),
		2: longSignal(2, 102, 92, 122),
	}}
	e := NewEngine("TESTUSDT", strat)

	res, err := e.Run([]models.Bar{
		tb(0, 100, 101, 99, 100),
		tb(1, 100, 102, 99, 101),
		tb(2, 101, 103, 100, 102),
	})
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, 0, res.Trades[0].EntryIndex)
}

func TestEngineExitsBeforeEnteringOnSameBar(t *testing.T) {
	strat := &scriptedStrategy{signals: map[int]*models.Signal{
		0: longSignal(0, 100, 95, 105),
		2: longSignal(2, 106, 101, 111),
	}}
	e := NewEngine("TESTUSDT", strat)

	// bar 2 both tags the first trade's target and emits a fresh signal
	res, err := e.Run([]models.Bar{
		tb(0, 100, 101, 99, 100),
		tb(1, 100, 103, 99.5, 102),
		tb(2, 102, 106, 101.5, 106),
		tb(3, 106, 112, 105, 111.5),
	})
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, models.ExitTarget, res.Trades[0].ExitReason)
	assert.Equal(t, 2, res.Trades[0].ExitIndex)
	assert.Equal(t, 2, res.Trades[1].EntryIndex)
	assert.Equal(t, models.ExitTarget, res.Trades[1].ExitReason)
}

func TestEngineRejectsInvalidBars(t *testing.T) {
	e := NewEngine("TESTUSDT", &scriptedStrategy{})

	cases := []struct {
		name string
		bars []models.Bar
		idx  int
	}{
		{
			name: "non positive price",
			bars: []models.Bar{tb(0, 100, 101, 99, 100), tb(1, -1, 101, 99, 100)},
			idx:  1,
		},
		{
			name: "negative volume",
			bars: []models.Bar{{Timestamp: time.Unix(0, 0), Open: 1, High: 1, Low: 1, Close: 1, Volume: -1}},
			idx:  0,
		},
		{
			name: "high below low",
			bars: []models.Bar{tb(0, 100, 98, 99, 100)},
			idx:  0,
		},
		{
			name: "duplicate timestamp",
			bars: []models.Bar{tb(0, 100, 101, 99, 100), tb(0, 100, 101, 99, 100)},
			idx:  1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Run(tc.bars)
			var ibe *models.InvalidBarError
			require.ErrorAs(t, err, &ibe)
			assert.Equal(t, tc.idx, ibe.Index)
		})
	}
}

func TestEngineEmptyInputYieldsEmptyResult(t *testing.T) {
	e := NewEngine("TESTUSDT", &scriptedStrategy{})

	res, err := e.Run(nil)
	require.NoError(t, err)
	assert.Zero(t, res.BarCount)
	assert.Empty(t, res.Trades)
	assert.Zero(t, res.Summary.TotalTrades)
}

func TestEngineRunIsDeterministic(t *testing.T) {
	bars := []models.Bar{
		tb(0, 100, 101, 99, 100),
		tb(1, 100, 103, 99.5, 102),
		tb(2, 102, 106, 101, 105.5),
		tb(3, 105, 107, 104, 106),
	}
	mk := func() *Engine {
		return NewEngine("TESTUSDT", &scriptedStrategy{signals: map[int]*models.Signal{
			0: longSignal(0, 100, 95, 105),
		}})
	}

	res1, err := mk().Run(bars)
	require.NoError(t, err)
	res2, err := mk().Run(bars)
	require.NoError(t, err)

	assert.Equal(t, res1, res2)
}
