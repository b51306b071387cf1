package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateEMA_LeadingNaNs(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(100 + i)
	}
	ema, err := CalculateEMA(values, EMAOptions{Span: 15, MinPeriods: 15, Adjust: true})
	require.NoError(t, err)
	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(ema[i]), "ema[%d] = %.4f, want NaN", i, ema[i])
	}
	assert.False(t, math.IsNaN(ema[14]), "ema[14] should be defined")
}

func TestCalculateEMA_MonotonicSeriesIsBounded(t *testing.T) {
	values := []float64{1, 2, 4, 7, 11, 16, 22, 29, 37, 46}
	for _, adjust := range []bool{true, false} {
		ema, err := CalculateEMA(values, EMAOptions{Span: 3, Adjust: adjust})
		require.NoError(t, err)
		for i, v := range ema {
			assert.GreaterOrEqual(t, v, values[0], "adjust=%v ema[%d]", adjust, i)
			assert.LessOrEqual(t, v, values[len(values)-1], "adjust=%v ema[%d]", adjust, i)
			assert.LessOrEqual(t, v, values[i], "adjust=%v ema[%d] above latest value", adjust, i)
		}
	}
}

func TestCalculateEMA_KnownValues(t *testing.T) {
	// span=3 -> alpha=0.5
	ema, err := CalculateEMA([]float64{1, 2, 3}, EMAOptions{Span: 3, Adjust: true})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 5.0 / 3.0, 17.0 / 7.0}, ema, 1e-12)

	ema, err = CalculateEMA([]float64{1, 2, 3}, EMAOptions{Span: 3, Adjust: false})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 1.5, 2.25}, ema, 1e-12)
}

func TestCalculateEMA_SkipsNaN(t *testing.T) {
	ema, err := CalculateEMA([]float64{math.NaN(), 4, math.NaN(), 4}, EMAOptions{Span: 5, Adjust: true})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ema[0]))
	assert.Equal(t, []float64{4, 4, 4}, ema[1:])
}

func TestCalculateEMA_InvalidSpan(t *testing.T) {
	_, err := CalculateEMA([]float64{1}, EMAOptions{Span: 0})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
