package calculator

import (
	"math"

	"StockLab/internal/model"
)

// TypicalPrice is (high + low + adjusted close) / 3.
func TypicalPrice(b model.OHLCV) float64 {
	return (b.High + b.Low + b.AdjClose) / 3
}

// CalculateVWAP returns Σ(typical price × volume) / Σ(volume) over all bars.
func CalculateVWAP(bars []model.OHLCV) (float64, error) {
	if len(bars) == 0 {
		return 0, ErrNoData
	}
	var tpv, vol float64
	for _, b := range bars {
		tpv += TypicalPrice(b) * b.Volume
		vol += b.Volume
	}
	if vol == 0 {
		return 0, ErrZeroVolume
	}
	return tpv / vol, nil
}

// UpdatedVWAP holds the volume-weighted OHLC means behind the updated VWAP figure.
type UpdatedVWAP struct {
	Open    float64
	High    float64
	Low     float64
	Close   float64
	Average float64
	Value   float64
}

// CalculateUpdatedVWAP averages the volume-weighted open, high, low and
// adjusted close, then centres that average on the last adjusted close.
func CalculateUpdatedVWAP(bars []model.OHLCV) (*UpdatedVWAP, error) {
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	var ov, hv, lv, cv, vol float64
	for _, b := range bars {
		ov += b.Open * b.Volume
		hv += b.High * b.Volume
		lv += b.Low * b.Volume
		cv += b.AdjClose * b.Volume
		vol += b.Volume
	}
	if vol == 0 {
		return nil, ErrZeroVolume
	}
	u := &UpdatedVWAP{Open: ov / vol, High: hv / vol, Low: lv / vol, Close: cv / vol}
	u.Average = (u.Open + u.High + u.Low + u.Close) / 4
	last := bars[len(bars)-1].AdjClose
	u.Value = ((last - u.Average) + (last + u.Average)) / 2
	return u, nil
}

// VWAPColumn returns, per bar, mean(O×V, H×V, L×V, C×V) / V. Bars with zero
// volume yield NaN.
func VWAPColumn(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if b.Volume == 0 {
			out[i] = math.NaN()
			continue
		}
		mean := (b.Open*b.Volume + b.High*b.Volume + b.Low*b.Volume + b.AdjClose*b.Volume) / 4
		out[i] = mean / b.Volume
	}
	return out
}
