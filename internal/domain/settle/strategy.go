// Package settle implements the three settlement paths for a submitted order
// (cash on delivery, VNPay, MoMo) and the reconciliation of gateway callbacks.
package settle

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/banhkem/checkout/internal/domain/order"
)

// ErrEmptyPaymentURL is returned when the payment service responds without a
// redirect target. The order is already created at that point and stays
// created-but-unpaid; no compensating cancel is attempted.
var ErrEmptyPaymentURL = errors.New("payment service returned no redirect url")

// Outcome is the uniform result of settling an order request. For gateway
// methods RedirectURL is the page the browser must navigate to; for cash it
// is empty and the order is complete.
type Outcome struct {
	OrderID     string
	Status      string
	Total       decimal.Decimal
	Discount    decimal.Decimal
	Method      order.PaymentMethod
	RedirectURL string
	QRCodeURL   string
}

// Strategy settles one order request via a single payment method.
type Strategy interface {
	Settle(ctx context.Context, req *order.Request) (*Outcome, error)
}

// PaymentTarget is where a gateway wants the customer sent to pay.
type PaymentTarget struct {
	RedirectURL string
	QRCodeURL   string
}

// PaymentFunc creates a gateway payment for an existing order and returns the
// redirect target. Each gateway contributes its own implementation.
type PaymentFunc func(ctx context.Context, orderID string) (*PaymentTarget, error)

// StatusChecker asks the payment service for the server-side status of an
// order's payment. Used by the reconciler for best-effort verification.
type StatusChecker interface {
	PaymentStatus(ctx context.Context, orderID string) (string, error)
}
