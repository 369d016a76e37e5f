package voucher

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalid is returned when a selected voucher fails revalidation against
// the current order total. The selection must be cleared and the submission
// aborted; an order is never sent with a stale voucher.
var ErrInvalid = errors.New("voucher invalid")

// Voucher is a percentage-discount code owned by the loyalty service. This
// package only holds a transient selection reference to it.
type Voucher struct {
	Code          string          `json:"code"`
	DiscountValue decimal.Decimal `json:"discountValue"` // fraction in (0,1]
	ExpiresAt     time.Time       `json:"expirationDate"`
}

// Quote is the pricing outcome for a subtotal with an optional voucher.
// Amounts are VND, so everything rounds to whole units.
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Final    decimal.Decimal
}

// Compute prices a subtotal against the selected voucher. A nil voucher means
// no discount. The result is recomputed on every call; nothing is cached
// across subtotal or selection changes.
func Compute(subtotal decimal.Decimal, v *Voucher) Quote {
	discount := decimal.Zero
	if v != nil {
		discount = subtotal.Mul(v.DiscountValue).Round(0)
	}

	final := subtotal.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Final:    final,
	}
}

// Validation is the loyalty service's verdict on a voucher for a given total.
type Validation struct {
	Valid   bool
	Message string
}

// Validator revalidates a voucher code against the current order total
// through the loyalty service. Implemented by the loyalty client.
type Validator interface {
	ValidateVoucher(ctx context.Context, code string, orderTotal decimal.Decimal) (*Validation, error)
}
