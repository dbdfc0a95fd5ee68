package market

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func candleAt(day int, o, h, l, c float64) Candle {
	return Candle{
		Time:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: 100,
	}
}

func TestCandleDirection(t *testing.T) {
	t.Parallel()

	up := candleAt(0, 100, 105, 99, 104)
	down := candleAt(0, 104, 105, 99, 100)
	flat := candleAt(0, 100, 105, 99, 100)

	assert.True(t, up.Bullish())
	assert.False(t, up.Bearish())
	assert.True(t, down.Bearish())
	assert.False(t, flat.Bullish())
	assert.False(t, flat.Bearish())
}

func TestCandleMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    Candle
		want bool
	}{
		{"sane", candleAt(0, 100, 105, 99, 104), false},
		{"zero open", candleAt(0, 0, 105, 99, 104), true},
		{"negative low", candleAt(0, 100, 105, -1, 104), true},
		{"nan close", candleAt(0, 100, 105, 99, math.NaN()), true},
		{"inf high", candleAt(0, 100, math.Inf(1), 99, 104), true},
		{"high below low", candleAt(0, 100, 98, 99, 99), true},
		{"open above high", candleAt(0, 106, 105, 99, 104), true},
		{"close below low", candleAt(0, 100, 105, 99, 98), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Malformed())
		})
	}
}

func TestSeriesAccessors(t *testing.T) {
	t.Parallel()

	s := Series{
		candleAt(0, 100, 105, 99, 104),
		candleAt(1, 104, 108, 103, 107),
		candleAt(2, 107, 110, 106, 109),
	}

	assert.Equal(t, []float64{104, 107, 109}, s.Closes())
	assert.Equal(t, []float64{105, 108, 110}, s.Highs())
	assert.Len(t, s.Tail(2), 2)
	assert.Equal(t, s, s.Tail(10))
	assert.Equal(t, 109.0, s.Tail(1)[0].Close)
}

func TestSeriesValidate(t *testing.T) {
	t.Parallel()

	good := Series{
		candleAt(0, 100, 105, 99, 104),
		candleAt(1, 104, 108, 103, 107),
	}
	assert.NoError(t, good.Validate())

	dupTime := Series{
		candleAt(0, 100, 105, 99, 104),
		candleAt(0, 104, 108, 103, 107),
	}
	assert.ErrorContains(t, dupTime.Validate(), "not increasing")

	bad := Series{candleAt(0, 100, 98, 99, 99)}
	assert.ErrorContains(t, bad.Validate(), "malformed")
}

func TestDirectionSign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, Long.Sign())
	assert.Equal(t, -1.0, Short.Sign())
	assert.Equal(t, "LONG", Long.String())
	assert.Equal(t, "SHORT", Short.String())
}

func TestTimeframe(t *testing.T) {
	t.Parallel()

	recent, total := Weekly.PeakWindows()
	assert.Equal(t, 5, recent)
	assert.Equal(t, 52, total)

	recent, total = Daily.PeakWindows()
	assert.Equal(t, 7, recent)
	assert.Equal(t, 200, total)

	assert.Equal(t, 0.2, Weekly.PatternBuffer())
	assert.Equal(t, 0.1, Daily.PatternBuffer())

	assert.True(t, Weekly.Valid())
	assert.False(t, Timeframe("1h").Valid())
}

func TestParseTimeframe(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1w", "w", "weekly"} {
		tf, err := ParseTimeframe(s)
		assert.NoError(t, err)
		assert.Equal(t, Weekly, tf)
	}
	tf, err := ParseTimeframe("1d")
	assert.NoError(t, err)
	assert.Equal(t, Daily, tf)

	_, err = ParseTimeframe("1h")
	assert.Error(t, err)
}
