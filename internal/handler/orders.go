package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/banhkem/checkout/internal/client"
)

type historyResponse struct {
	Orders     []client.RemoteOrder     `json:"orders"`
	Statistics client.HistoryStatistics `json:"statistics"`
	Source     string                   `json:"source"`
}

// orderHistory serves the order history from the order service, falling back
// to the locally recorded entries when the service is unreachable. The
// response marks which source answered.
func (h *Handler) orderHistory(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}

	page, err := h.orders.History(r.Context())
	if err == nil {
		if page.Orders == nil {
			page.Orders = []client.RemoteOrder{}
		}
		writeJSON(w, http.StatusOK, historyResponse{
			Orders:     page.Orders,
			Statistics: page.Statistics,
			Source:     "remote",
		})
		return
	}
	zctx.From(r.Context()).Warn("remote order history unavailable", zap.Error(err))

	entries, err := h.history.List(r.Context(), session)
	if err != nil {
		logError(r, "read local order history", err)
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	orders := make([]client.RemoteOrder, 0, len(entries))
	totalSpent := decimal.Zero
	for _, e := range entries {
		orders = append(orders, client.RemoteOrder{
			ID:         e.OrderID,
			Status:     e.Status,
			FinalPrice: e.TotalPrice,
			CreatedAt:  e.CreatedAt,
		})
		totalSpent = totalSpent.Add(e.TotalPrice)
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Orders: orders,
		Statistics: client.HistoryStatistics{
			TotalOrders: len(orders),
			TotalSpent:  totalSpent,
		},
		Source: "local",
	})
}

// orderByID proxies a single order lookup to the order service.
func (h *Handler) orderByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "order id is required")
		return
	}

	created, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		var svcErr *client.ServiceError
		if errors.As(err, &svcErr) && svcErr.StatusCode == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		logError(r, "fetch order", err)
		writeError(w, http.StatusBadGateway, "service_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, created)
}
