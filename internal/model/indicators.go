package model

// Indicators holds the snapshot summary computed for one symbol.
type Indicators struct {
	Symbol       string
	CurrentPrice float64
	SMA          float64
	SMAPeriod    int
	RSI          float64
	High52w      float64
	Low52w       float64
	High30d      float64
	Low30d       float64
	Position52w  float64 // 0.0 ~ 1.0
}
