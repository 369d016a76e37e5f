// Package checkout owns the single submit transition that turns a shopping
// cart into an order dispatched to one settlement strategy.
package checkout

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"

	"github.com/banhkem/checkout/internal/domain/cart"
	"github.com/banhkem/checkout/internal/domain/order"
	"github.com/banhkem/checkout/internal/domain/settle"
	"github.com/banhkem/checkout/internal/domain/voucher"
)

// ErrSubmissionInProgress is returned when Submit is entered while a prior
// attempt for the same session has not reached a terminal state. Callers
// treat it as a silent no-op, not a user-facing error.
var ErrSubmissionInProgress = errors.New("submission already in progress")

// State is the observable phase of the current submission attempt.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Input is everything a submission attempt needs from the caller.
type Input struct {
	SessionID string
	Lines     []cart.Line
	Customer  order.Customer
	Method    order.PaymentMethod
	Voucher   *voucher.Voucher
}

// session is one browser context's mutable checkout state. The in-progress
// flag guards against rapid repeated submits within that context only;
// submissions from different sessions never block each other, and
// cross-instance duplicates are left to the order service's ClientOrderID
// deduplication.
type session struct {
	selection  voucher.Selection
	submitting atomic.Bool
	state      atomic.Int32
}

// Coordinator drives Idle → Validating → Submitting → {Succeeded, Failed}
// for one submission at a time per session.
type Coordinator struct {
	strategies map[order.PaymentMethod]settle.Strategy
	vouchers   voucher.Validator

	mu       sync.Mutex
	sessions map[string]*session

	now    func() time.Time
	suffix func() int
}

// NewCoordinator creates a Coordinator dispatching to the given strategies.
func NewCoordinator(strategies map[order.PaymentMethod]settle.Strategy, vouchers voucher.Validator) *Coordinator {
	return &Coordinator{
		strategies: strategies,
		vouchers:   vouchers,
		sessions:   make(map[string]*session),
		now:        time.Now,
		suffix:     func() int { return rand.IntN(10000) },
	}
}

// session returns the state bucket for sessionID, creating it on first use.
func (c *Coordinator) session(sessionID string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		s = &session{}
		c.sessions[sessionID] = s
	}
	return s
}

// State returns the phase of the session's most recent submission attempt.
func (c *Coordinator) State(sessionID string) State {
	return State(c.session(sessionID).state.Load())
}

// ToggleVoucher selects v for the session, or deselects it when it is already
// selected. It reports whether a voucher is selected afterwards.
func (c *Coordinator) ToggleVoucher(sessionID string, v voucher.Voucher) bool {
	return c.session(sessionID).selection.Toggle(v)
}

// SelectedVoucher returns the session's currently selected voucher, or nil.
func (c *Coordinator) SelectedVoucher(sessionID string) *voucher.Voucher {
	return c.session(sessionID).selection.Current()
}

// Submit runs one submission attempt end to end. It always leaves the
// session's in-progress flag cleared, success or failure, so a new attempt is
// never blocked by a stuck prior one.
func (c *Coordinator) Submit(ctx context.Context, in Input) (*settle.Outcome, error) {
	sess := c.session(in.SessionID)

	if !sess.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInProgress
	}
	defer sess.submitting.Store(false)

	sess.state.Store(int32(StateValidating))

	req, err := c.validate(ctx, sess, in)
	if err != nil {
		sess.state.Store(int32(StateFailed))
		return nil, err
	}

	strategy, ok := c.strategies[in.Method]
	if !ok {
		sess.state.Store(int32(StateFailed))
		return nil, errors.Errorf("unsupported payment method %q", in.Method)
	}

	sess.state.Store(int32(StateSubmitting))

	out, err := strategy.Settle(ctx, req)
	if err != nil {
		sess.state.Store(int32(StateFailed))
		return nil, err
	}

	// The order is placed; the selection must not leak into the next one.
	sess.selection.Clear()

	sess.state.Store(int32(StateSucceeded))
	return out, nil
}

// validate checks preconditions and builds the immutable order request with
// a fresh client order id.
func (c *Coordinator) validate(ctx context.Context, sess *session, in Input) (*order.Request, error) {
	if len(in.Lines) == 0 {
		return nil, &ValidationError{Field: "cart", Reason: "cart is empty"}
	}
	if err := validateCustomer(in.Customer); err != nil {
		return nil, err
	}

	items, err := cart.Normalize(ctx, in.Lines)
	if err != nil {
		return nil, err
	}

	subtotal := cart.Subtotal(in.Lines)

	// The submit payload may carry the voucher directly; otherwise the
	// session's server-side selection applies.
	chosen := in.Voucher
	if chosen == nil {
		chosen = sess.selection.Current()
	}

	// A voucher must pass revalidation against the current subtotal right
	// before submission; a stale selection never reaches the order service.
	if chosen != nil {
		v, err := c.vouchers.ValidateVoucher(ctx, chosen.Code, subtotal)
		if err != nil {
			return nil, errors.Wrap(err, "revalidate voucher")
		}
		if !v.Valid {
			sess.selection.Clear()
			if v.Message != "" {
				return nil, errors.Wrap(voucher.ErrInvalid, v.Message)
			}
			return nil, voucher.ErrInvalid
		}
	}

	quote := voucher.Compute(subtotal, chosen)

	req := &order.Request{
		SessionID:     in.SessionID,
		Lines:         in.Lines,
		Items:         items,
		Customer:      in.Customer,
		ClientOrderID: c.clientOrderID(),
		RequestedAt:   c.now(),
		Method:        in.Method,
		Subtotal:      quote.Subtotal,
		Discount:      quote.Discount,
		Total:         quote.Final,
	}
	if chosen != nil {
		req.VoucherCode = chosen.Code
	}
	return req, nil
}

// clientOrderID derives the per-attempt idempotency token from wall-clock
// time plus a random suffix.
func (c *Coordinator) clientOrderID() string {
	return fmt.Sprintf("%d-%04d", c.now().UnixMilli(), c.suffix())
}
