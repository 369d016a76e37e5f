package settle

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/banhkem/checkout/internal/domain/order"
)

// StatusPlaced is the history status for a cash order accepted by the order
// service; payment happens on delivery.
const StatusPlaced = "Placed"

// Cash settles an order with cash on delivery: create the order, record it in
// the local history, done. No redirect is involved.
type Cash struct {
	orders  order.Creator
	history order.HistoryStore
	now     func() time.Time
}

// NewCash creates the cash-on-delivery strategy.
func NewCash(orders order.Creator, history order.HistoryStore) *Cash {
	return &Cash{orders: orders, history: history, now: time.Now}
}

// Settle creates the order and appends a history entry. Money fields prefer
// the server's response and fall back to the locally computed request totals
// when the response omits them.
func (s *Cash) Settle(ctx context.Context, req *order.Request) (*Outcome, error) {
	created, err := s.orders.Create(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	total := created.FinalPrice
	if total.IsZero() {
		total = req.Total
	}
	discount := created.Discount
	if discount.IsZero() {
		discount = req.Discount
	}
	status := created.Status
	if status == "" {
		status = StatusPlaced
	}

	entry := order.HistoryEntry{
		OrderID:       created.ID,
		TotalPrice:    total,
		OriginalTotal: req.Subtotal,
		VoucherCode:   req.VoucherCode,
		Discount:      discount,
		Status:        status,
		Method:        order.MethodCOD,
		CustomerName:  req.Customer.Name,
		CustomerEmail: req.Customer.Email,
		CreatedAt:     s.now(),
	}
	if err := s.history.Append(ctx, req.SessionID, entry); err != nil {
		return nil, errors.Wrap(err, "append history")
	}

	return &Outcome{
		OrderID:  created.ID,
		Status:   status,
		Total:    total,
		Discount: discount,
		Method:   order.MethodCOD,
	}, nil
}
