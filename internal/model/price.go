package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one observation of a date-indexed series (closing price or index level).
type PricePoint struct {
	Date  time.Time
	Value decimal.Decimal
}

// PriceSeries is a date-indexed series, sorted ascending by date.
type PriceSeries []PricePoint

// Benchmark describes an entry of the benchmark catalog.
type Benchmark struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Symbol string `json:"symbol"`
	Source string `json:"source"` // "yahoo" or "bcb"
}

// Matches reports whether name refers to b by its name or its label,
// ignoring case and surrounding spaces.
func (b Benchmark) Matches(name string) bool {
	name = strings.TrimSpace(name)
	return strings.EqualFold(b.Name, name) || strings.EqualFold(b.Label, name)
}

// Benchmark sources.
const (
	SourceYahoo = "yahoo"
	SourceBCB   = "bcb"
)
