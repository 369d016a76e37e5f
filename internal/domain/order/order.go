package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/banhkem/checkout/internal/domain/cart"
)

// PaymentMethod enumerates the three mutually exclusive settlement paths.
type PaymentMethod string

const (
	MethodCOD   PaymentMethod = "cod"
	MethodVNPay PaymentMethod = "vnpay"
	MethodMoMo  PaymentMethod = "momo"
)

// ErrNoOrderID is returned when the order service response carries no usable
// order identifier under any of the accepted field names.
var ErrNoOrderID = errors.New("order response missing order id")

// Customer holds the delivery and contact details attached to an order.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Note    string `json:"note"`
}

// Request is one submission attempt, immutable after construction. The
// ClientOrderID is a fresh idempotency token per attempt so the order service
// can collapse retried submissions.
type Request struct {
	SessionID     string          `json:"-"`
	// Lines is the raw cart snapshot the items were normalized from. It is
	// carried for the pending-payment record only and never sent on the wire.
	Lines         []cart.Line     `json:"-"`
	Items         []cart.Item     `json:"items"`
	Customer      Customer        `json:"customer"`
	ClientOrderID string          `json:"clientOrderId"`
	RequestedAt   time.Time       `json:"requestTimestamp"`
	Method        PaymentMethod   `json:"paymentMethod"`
	VoucherCode   string          `json:"voucherCode,omitempty"`
	Subtotal      decimal.Decimal `json:"originalTotal"`
	Discount      decimal.Decimal `json:"voucherDiscount"`
	Total         decimal.Decimal `json:"finalTotal"`
}

// Created is the normalized result of a createOrder call. The order service
// responds in more than one wire shape; the client maps every accepted shape
// into this one type, so nothing past the client boundary deals with
// variance. Server-omitted money fields are zero and callers fall back to
// locally computed values.
type Created struct {
	ID         string
	Status     string
	FinalPrice decimal.Decimal
	Discount   decimal.Decimal
}

// Creator submits an order request to the external order service.
type Creator interface {
	Create(ctx context.Context, req *Request) (*Created, error)
}

// HistoryLimit caps the locally kept order history; the oldest entry is
// evicted when a new one would exceed it.
const HistoryLimit = 50

// HistoryEntry is one row of the local, append-only order history.
type HistoryEntry struct {
	OrderID       string          `json:"orderId"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	OriginalTotal decimal.Decimal `json:"originalTotal"`
	VoucherCode   string          `json:"voucherCode,omitempty"`
	Discount      decimal.Decimal `json:"voucherDiscount"`
	Status        string          `json:"status"`
	Method        PaymentMethod   `json:"paymentMethod"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	TransactionID string          `json:"transactionId,omitempty"`
	BankCode      string          `json:"bankCode,omitempty"`
	PayDate       string          `json:"payDate,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// HistoryStore persists the capped per-session order history, newest first.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, entry HistoryEntry) error
	List(ctx context.Context, sessionID string) ([]HistoryEntry, error)
}

// PendingRecord is the durable snapshot written just before a redirect-based
// payment leaves the page. It carries everything the reconciler needs to
// resume after the browser returns.
type PendingRecord struct {
	OrderID   string          `json:"orderId"`
	Request   Request         `json:"orderRequest"`
	Lines     []cart.Line     `json:"cartSnapshot"`
	CartTotal decimal.Decimal `json:"cartTotal"`
	Customer  Customer        `json:"customerInfo"`
	Method    PaymentMethod   `json:"paymentMethod"`
	CreatedAt time.Time       `json:"createdAt"`
}

// PendingStore keeps at most one pending record per (session, gateway).
// Put overwrites any prior record under the same key. Take is
// read-once-then-delete: the record is removed regardless of what the caller
// does with it, so it can be consumed at most once.
type PendingStore interface {
	Put(ctx context.Context, sessionID string, method PaymentMethod, rec PendingRecord) error
	Take(ctx context.Context, sessionID string, method PaymentMethod) (*PendingRecord, bool, error)
}
