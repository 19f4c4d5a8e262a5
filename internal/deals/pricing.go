package deals

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DealPrice returns price * (1 - pct/100) rounded half away from zero to
// cents.
func DealPrice(price, pct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	return price.Mul(factor).Round(2)
}

// IsActive reports whether now falls within [start, end].
func IsActive(start, end, now time.Time) bool {
	return !now.Before(start) && !now.After(end)
}
