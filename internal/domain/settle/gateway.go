package settle

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/banhkem/checkout/internal/domain/order"
)

// Gateway settles an order through a redirect-based payment gateway. VNPay
// and MoMo are structurally identical: create the order first (the gateway
// embeds the order id in its return URL), ask the payment service for a
// redirect target, persist a pending record, and hand the redirect URL back.
//
// Everything durable must be written before the redirect happens, because the
// navigation is a full page replacement on the frontend and any state not in
// the pending store is lost.
type Gateway struct {
	method  order.PaymentMethod
	orders  order.Creator
	payment PaymentFunc
	pending order.PendingStore
	now     func() time.Time
}

// NewGateway creates a redirect-based strategy for the given method.
func NewGateway(method order.PaymentMethod, orders order.Creator, payment PaymentFunc, pending order.PendingStore) *Gateway {
	return &Gateway{
		method:  method,
		orders:  orders,
		payment: payment,
		pending: pending,
		now:     time.Now,
	}
}

// Settle runs the gateway flow. Order creation always precedes payment-URL
// creation. When the payment service returns no redirect target the order is
// left created-but-unpaid and ErrEmptyPaymentURL is returned; the abandoned
// order is picked up by manual reconciliation, not cancelled here.
func (s *Gateway) Settle(ctx context.Context, req *order.Request) (*Outcome, error) {
	created, err := s.orders.Create(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	target, err := s.payment(ctx, created.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s payment for order %s", s.method, created.ID)
	}
	if target == nil || target.RedirectURL == "" {
		zctx.From(ctx).Warn("gateway returned no redirect url, order left unpaid",
			zap.String("order_id", created.ID),
			zap.String("method", string(s.method)),
		)
		return nil, ErrEmptyPaymentURL
	}

	rec := order.PendingRecord{
		OrderID:   created.ID,
		Request:   *req,
		Lines:     req.Lines,
		CartTotal: req.Total,
		Customer:  req.Customer,
		Method:    s.method,
		CreatedAt: s.now(),
	}
	if err := s.pending.Put(ctx, req.SessionID, s.method, rec); err != nil {
		return nil, errors.Wrap(err, "persist pending payment")
	}

	return &Outcome{
		OrderID:     created.ID,
		Status:      created.Status,
		Total:       req.Total,
		Discount:    req.Discount,
		Method:      s.method,
		RedirectURL: target.RedirectURL,
		QRCodeURL:   target.QRCodeURL,
	}, nil
}
