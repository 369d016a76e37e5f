package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/banhkem/checkout/internal/client"
	"github.com/banhkem/checkout/internal/domain/cart"
	"github.com/banhkem/checkout/internal/domain/checkout"
	"github.com/banhkem/checkout/internal/domain/order"
	"github.com/banhkem/checkout/internal/domain/settle"
	"github.com/banhkem/checkout/internal/domain/voucher"
)

type submitRequest struct {
	Items         []cart.Line         `json:"items"`
	Customer      order.Customer      `json:"customer"`
	PaymentMethod order.PaymentMethod `json:"paymentMethod"`
	Voucher       *voucher.Voucher    `json:"voucher,omitempty"`
}

type submitResponse struct {
	OrderID       string              `json:"orderId"`
	Status        string              `json:"status,omitempty"`
	FinalTotal    decimal.Decimal     `json:"finalTotal"`
	Discount      decimal.Decimal     `json:"voucherDiscount"`
	PaymentMethod order.PaymentMethod `json:"paymentMethod"`
	RedirectURL   string              `json:"redirectUrl,omitempty"`
	QRCodeURL     string              `json:"qrCodeUrl,omitempty"`
}

// submit is the single entry point for placing an order. Everything the
// coordinator rejects comes back as one JSON error; a duplicate submit while
// an attempt is in flight is a silent no-op.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	out, err := h.coordinator.Submit(r.Context(), checkout.Input{
		SessionID: session,
		Lines:     req.Items,
		Customer:  req.Customer,
		Method:    req.PaymentMethod,
		Voucher:   req.Voucher,
	})
	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		OrderID:       out.OrderID,
		Status:        out.Status,
		FinalTotal:    out.Total,
		Discount:      out.Discount,
		PaymentMethod: out.Method,
		RedirectURL:   out.RedirectURL,
		QRCodeURL:     out.QRCodeURL,
	})
}

// writeSubmitError maps domain errors onto the HTTP error shape.
func (h *Handler) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	// Duplicate submit: the first attempt is still running, nothing to report.
	if errors.Is(err, checkout.ErrSubmissionInProgress) {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "in_progress"})
		return
	}

	var vErr *checkout.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, "validation", vErr.Error())
		return
	}

	var ipErr *cart.InvalidProductError
	if errors.As(err, &ipErr) {
		writeError(w, http.StatusBadRequest, "invalid_product", ipErr.Error())
		return
	}

	if errors.Is(err, voucher.ErrInvalid) {
		writeError(w, http.StatusUnprocessableEntity, "voucher_invalid", err.Error())
		return
	}

	if errors.Is(err, settle.ErrEmptyPaymentURL) || errors.Is(err, order.ErrNoOrderID) {
		logError(r, "gateway response invalid", err)
		writeError(w, http.StatusBadGateway, "gateway_response_invalid", err.Error())
		return
	}

	var svcErr *client.ServiceError
	if errors.As(err, &svcErr) {
		writeError(w, http.StatusBadGateway, "service_error", svcErr.Message)
		return
	}

	logError(r, "submit failed", err)
	writeError(w, http.StatusInternalServerError, "internal", err.Error())
}

type toggleVoucherResponse struct {
	Selected bool             `json:"selected"`
	Voucher  *voucher.Voucher `json:"voucher,omitempty"`
}

// toggleVoucher selects the given voucher, or deselects it when it is already
// the current selection.
func (h *Handler) toggleVoucher(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}

	var v voucher.Voucher
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil || v.Code == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "voucher code is required")
		return
	}

	selected := h.coordinator.ToggleVoucher(session, v)
	writeJSON(w, http.StatusOK, toggleVoucherResponse{
		Selected: selected,
		Voucher:  h.coordinator.SelectedVoucher(session),
	})
}

type checkoutContextResponse struct {
	Vouchers []voucher.Voucher `json:"vouchers"`
	Points   int               `json:"currentPoints"`
}

// checkoutContext returns the vouchers and loyalty points shown when the
// checkout surface opens. Both are fetched in parallel; a points failure is
// tolerated (zero is shown) so loyalty downtime never blocks checkout.
func (h *Handler) checkoutContext(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}

	var (
		vouchers []voucher.Voucher
		points   int
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		vouchers, err = h.loyalty.Vouchers(ctx)
		return err
	})
	g.Go(func() error {
		p, err := h.loyalty.Points(ctx, session)
		if err != nil {
			zctx.From(ctx).Warn("loyalty points unavailable", zap.Error(err))
			return nil
		}
		points = p
		return nil
	})
	if err := g.Wait(); err != nil {
		logError(r, "fetch vouchers", err)
		writeError(w, http.StatusBadGateway, "service_error", err.Error())
		return
	}

	if vouchers == nil {
		vouchers = []voucher.Voucher{}
	}
	writeJSON(w, http.StatusOK, checkoutContextResponse{Vouchers: vouchers, Points: points})
}
