package service

import (
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/loyalty-ledger/internal/model"
)

// Calculator maps a spend amount and a resolved promotion set to a point
// award. It is pure: no clock, no storage, identical inputs always yield
// identical output.
type Calculator struct {
	baseRate decimal.Decimal
}

// NewCalculator creates a Calculator awarding baseRate points per currency unit.
func NewCalculator(baseRate float64) *Calculator {
	return &Calculator{baseRate: decimal.NewFromFloat(baseRate)}
}

// Calculate returns the earned points for a purchase:
// trunc(spent*baseRate) + trunc(spent*rate) per rate-bearing promotion +
// flat points per flat-award promotion. Every term is truncated toward zero
// before summing; the total is clamped to >= 0. Decimal arithmetic keeps
// products like 0.29*100 exact instead of the float64 28.999... .
func (c *Calculator) Calculate(spent float64, promotions []model.Promotion) int64 {
	d := decimal.NewFromFloat(spent)
	earned := d.Mul(c.baseRate).IntPart()

	for i := range promotions {
		p := &promotions[i]
		if p.Rate != nil {
			earned += d.Mul(decimal.NewFromFloat(*p.Rate)).IntPart()
		}
		if p.Points != nil {
			earned += *p.Points
		}
	}

	if earned < 0 {
		earned = 0
	}
	return earned
}
