package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decimal places kept when converting engine results for API responses.
const (
	MoneyPlaces    = 2
	QuantityPlaces = 5
	PercentPlaces  = 2
	IndexPlaces    = 4
)

// round converts a decimal to a float64 rounded half away from zero to the
// given number of places. Engine math stays exact; only the response is rounded.
//
// Example:
//
//	round(decimal.RequireFromString("123.456789"), MoneyPlaces)  // returns 123.46
func round(value decimal.Decimal, places int32) float64 {
	f, _ := value.Round(places).Float64()
	return f
}

// roundPtr is round for values that only exist sometimes.
func roundPtr(value decimal.Decimal, places int32) *float64 {
	f := round(value, places)
	return &f
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// nonNil returns s, or an empty slice when s is nil, so JSON renders [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
