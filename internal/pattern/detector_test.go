package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-action-bot-go/internal/models"
)

func ohlc(o, h, l, c float64) models.Bar {
	return models.Bar{Open: o, High: h, Low: l, Close: c, Volume: 1}
}

func allKinds() []string {
	return []string{
		string(models.PatternBullishEngulfing),
		string(models.PatternBearishEngulfing),
		string(models.PatternHammer),
		string(models.PatternShootingStar),
	}
}

func TestDetectBullishEngulfing(t *testing.T) {
	d := NewDetector(allKinds())
	prev := ohlc(102, 102.5, 99.5, 100) // bearish
	cur := ohlc(99.8, 103, 99.4, 102.5) // bullish, body swallows prev body

	p, ok := d.Detect(prev, cur, 7)
	require.True(t, ok)
	assert.Equal(t, models.PatternBullishEngulfing, p.Kind)
	assert.Equal(t, 7, p.Index)
	assert.True(t, p.Kind.Bullish())
}

func TestDetectBearishEngulfing(t *testing.T) {
	d := NewDetector(allKinds())
	prev := ohlc(100, 102.5, 99.5, 102)  // bullish
	cur := ohlc(102.2, 102.8, 98.5, 99.5) // bearish, body swallows prev body

	p, ok := d.Detect(prev, cur, 3)
	require.True(t, ok)
	assert.Equal(t, models.PatternBearishEngulfing, p.Kind)
	assert.True(t, p.Kind.Bearish())
}

func TestEngulfingRequiresOppositeColors(t *testing.T) {
	d := NewDetector(allKinds())

	// two bullish bars: no bullish engulfing no matter the bodies
	prev := ohlc(100, 102.5, 99.5, 102)
	cur := ohlc(99, 104, 98.5, 103.5)
	_, ok := d.Detect(prev, cur, 1)
	assert.False(t, ok)
}

func TestEngulfingRequiresFullBodyContainment(t *testing.T) {
	d := NewDetector([]string{string(models.PatternBullishEngulfing)})
	prev := ohlc(102, 102.5, 99.5, 100)
	// bullish but closes below prev open: body only partially covered
	cur := ohlc(99.8, 102, 99.4, 101.5)

	_, ok := d.Detect(prev, cur, 1)
	assert.False(t, ok)
}

func TestDetectHammer(t *testing.T) {
	d := NewDetector(allKinds())
	prev := ohlc(101, 101.5, 100.4, 100.5)
	// small body on top, long lower wick, almost no upper wick
	cur := ohlc(100, 100.6, 98, 100.5)

	p, ok := d.Detect(prev, cur, 5)
	require.True(t, ok)
	assert.Equal(t, models.PatternHammer, p.Kind)
	assert.True(t, p.Kind.Bullish())
}

func TestDetectShootingStar(t *testing.T) {
	d := NewDetector(allKinds())
	prev := ohlc(100.5, 101.5, 100.4, 101)
	// small body at the bottom, long upper wick
	cur := ohlc(100.5, 103, 99.9, 100)

	p, ok := d.Detect(prev, cur, 5)
	require.True(t, ok)
	assert.Equal(t, models.PatternShootingStar, p.Kind)
	assert.True(t, p.Kind.Bearish())
}

func TestHammerRejectsLargeBody(t *testing.T) {
	d := NewDetector([]string{string(models.PatternHammer)})
	prev := ohlc(101, 101.5, 100.4, 100.5)
	// the body takes most of the range
	cur := ohlc(98.5, 100.6, 98, 100.5)

	_, ok := d.Detect(prev, cur, 1)
	assert.False(t, ok)
}

func TestDetectorFiltersDisallowedKinds(t *testing.T) {
	d := NewDetector([]string{
		string(models.PatternBullishEngulfing),
		string(models.PatternBearishEngulfing),
	})

	// a textbook hammer must stay silent when not whitelisted
	prev := ohlc(101, 101.5, 100.4, 100.5)
	cur := ohlc(100, 100.6, 98, 100.5)
	_, ok := d.Detect(prev, cur, 1)
	assert.False(t, ok)
}

func TestDetectorIgnoresZeroRangeBar(t *testing.T) {
	d := NewDetector(allKinds())
	prev := ohlc(100, 100, 100, 100)
	cur := ohlc(100, 100, 100, 100)

	_, ok := d.Detect(prev, cur, 1)
	assert.False(t, ok)
}
