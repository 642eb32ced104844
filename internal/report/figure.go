package report

import (
	"github.com/shopspring/decimal"
)

// Amount is a single figure with no comparative value
type Amount = decimal.Decimal

// Figure is a current / prior period pair. N1 only ever comes from the prior-year balance.
type Figure struct {
	N  decimal.Decimal `json:"n"`
	N1 decimal.Decimal `json:"n1"`
}

// Cur builds a figure holding only the current value
func Cur(v decimal.Decimal) Figure {
	return Figure{N: v, N1: decimal.Zero}
}

// IsZero reports whether both periods are zero
func (f Figure) IsZero() bool {
	return f.N.IsZero() && f.N1.IsZero()
}

// Add returns f + o period by period
func (f Figure) Add(o Figure) Figure {
	return Figure{N: f.N.Add(o.N), N1: f.N1.Add(o.N1)}
}

// Sub returns f - o period by period
func (f Figure) Sub(o Figure) Figure {
	return Figure{N: f.N.Sub(o.N), N1: f.N1.Sub(o.N1)}
}

// Period says which half of a Figure a value belongs to
type Period int

const (
	PeriodN Period = iota
	PeriodN1
)

func positive(v decimal.Decimal) decimal.Decimal {
	if v.IsPositive() {
		return v
	}
	return decimal.Zero
}
