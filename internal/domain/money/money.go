// Package money holds the rules every monetary amount follows.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
)

// Scale is the number of decimal places stored for an amount on every backend.
const Scale = 2

// Check rejects negative amounts and amounts finer than Scale.
func Check(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return apperror.Validation("%s must be zero or greater", field)
	}
	if !d.Equal(d.Truncate(Scale)) {
		return apperror.Validation("%s must have at most %d decimal places", field, Scale)
	}
	return nil
}
