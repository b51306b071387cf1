package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLab/internal/model"
)

func bar(o, h, l, c, v float64) model.OHLCV {
	return model.OHLCV{Time: time.Now(), Open: o, High: h, Low: l, Close: c, AdjClose: c, Volume: v}
}

func TestCalculateVWAP_ConstantVolumeEqualsMeanTypicalPrice(t *testing.T) {
	bars := []model.OHLCV{
		bar(10, 12, 9, 11, 500),
		bar(11, 13, 10, 12, 500),
		bar(12, 15, 11, 14, 500),
		bar(14, 14, 12, 13, 500),
	}
	vwap, err := CalculateVWAP(bars)
	require.NoError(t, err)

	sum := 0.0
	for _, b := range bars {
		sum += TypicalPrice(b)
	}
	assert.InDelta(t, sum/float64(len(bars)), vwap, 1e-12)
}

func TestCalculateVWAP_WeightsByVolume(t *testing.T) {
	bars := []model.OHLCV{
		bar(0, 10, 10, 10, 1),
		bar(0, 20, 20, 20, 3),
	}
	vwap, err := CalculateVWAP(bars)
	require.NoError(t, err)
	assert.InDelta(t, 17.5, vwap, 1e-12)
}

func TestCalculateVWAP_Errors(t *testing.T) {
	_, err := CalculateVWAP(nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = CalculateVWAP([]model.OHLCV{bar(1, 2, 1, 2, 0)})
	assert.ErrorIs(t, err, ErrZeroVolume)
}

func TestCalculateUpdatedVWAP_CentresOnLastClose(t *testing.T) {
	bars := []model.OHLCV{
		bar(10, 12, 9, 11, 100),
		bar(11, 13, 10, 12, 200),
	}
	u, err := CalculateUpdatedVWAP(bars)
	require.NoError(t, err)
	assert.InDelta(t, (10*100+11*200)/300.0, u.Open, 1e-12)
	assert.InDelta(t, (u.Open+u.High+u.Low+u.Close)/4, u.Average, 1e-12)
	assert.InDelta(t, 12, u.Value, 1e-12)
}

func TestVWAPColumn(t *testing.T) {
	col := VWAPColumn([]model.OHLCV{
		bar(10, 12, 8, 10, 1000),
		bar(10, 12, 8, 10, 0),
	})
	require.Len(t, col, 2)
	assert.InDelta(t, 10, col[0], 1e-12)
	assert.True(t, math.IsNaN(col[1]))
}
