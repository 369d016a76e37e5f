// Package handler maps the HTTP surface onto the checkout domain: one submit
// entry point, the gateway return endpoints, and the read-only checkout
// context and history endpoints.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/banhkem/checkout/internal/client"
	"github.com/banhkem/checkout/internal/domain/checkout"
	"github.com/banhkem/checkout/internal/domain/order"
	"github.com/banhkem/checkout/internal/domain/settle"
	"github.com/banhkem/checkout/internal/domain/voucher"
)

// sessionHeader scopes the durable stores to one browser context.
const sessionHeader = "X-Session-ID"

// LoyaltyService is the slice of the loyalty client the handlers need.
type LoyaltyService interface {
	Vouchers(ctx context.Context) ([]voucher.Voucher, error)
	Points(ctx context.Context, sessionID string) (int, error)
}

// OrderReader is the read side of the order service client.
type OrderReader interface {
	GetByID(ctx context.Context, id string) (*order.Created, error)
	History(ctx context.Context) (*client.HistoryPage, error)
}

// Handler holds the wired dependencies for all checkout endpoints.
type Handler struct {
	coordinator *checkout.Coordinator
	reconciler  *settle.Reconciler
	loyalty     LoyaltyService
	orders      OrderReader
	history     order.HistoryStore
	results     settle.ResultStore
}

// New constructs a Handler.
func New(
	coordinator *checkout.Coordinator,
	reconciler *settle.Reconciler,
	loyalty LoyaltyService,
	orders OrderReader,
	history order.HistoryStore,
	results settle.ResultStore,
) *Handler {
	return &Handler{
		coordinator: coordinator,
		reconciler:  reconciler,
		loyalty:     loyalty,
		orders:      orders,
		history:     history,
		results:     results,
	}
}

// Routes returns the router for the /api subtree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/checkout/submit", h.submit)
	r.Get("/checkout/context", h.checkoutContext)
	r.Post("/checkout/voucher", h.toggleVoucher)
	r.Get("/payments/{gateway}/return", h.paymentReturn)
	r.Get("/payments/last-result", h.lastResult)
	r.Get("/orders/history", h.orderHistory)
	r.Get("/orders/{id}", h.orderByID)
	return r
}

// errorBody is the single JSON error shape for every endpoint.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// sessionID extracts the session from the request, writing a 400 when it is
// missing. The bool reports whether the caller may proceed.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_session", "X-Session-ID header is required")
		return "", false
	}
	return id, true
}

func logError(r *http.Request, msg string, err error) {
	zctx.From(r.Context()).Error(msg, zap.Error(err))
}
