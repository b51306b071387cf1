package calculator

import "errors"

var (
	ErrNoData         = errors.New("not enough data")
	ErrZeroVolume     = errors.New("total volume is zero")
	ErrInvalidPeriod  = errors.New("period must be positive")
	ErrLengthMismatch = errors.New("series lengths differ")
)
