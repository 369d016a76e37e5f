package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/banhkem/checkout/internal/domain/order"
	"github.com/banhkem/checkout/internal/domain/settle"
)

// paymentReturn is the landing endpoint a gateway redirects back to. The
// query parameters carry the whole outcome; the reconciler interprets them
// and folds the result into the session's local state.
func (h *Handler) paymentReturn(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}

	var method order.PaymentMethod
	switch gw := chi.URLParam(r, "gateway"); gw {
	case string(order.MethodVNPay):
		method = order.MethodVNPay
	case string(order.MethodMoMo):
		method = order.MethodMoMo
	default:
		writeError(w, http.StatusNotFound, "unknown_gateway", "unknown payment gateway: "+gw)
		return
	}

	res, err := h.reconciler.Reconcile(r.Context(), session, method, r.URL.Query())
	if err != nil {
		if errors.Is(err, settle.ErrNoCallbackData) {
			writeError(w, http.StatusBadRequest, "no_callback_data", err.Error())
			return
		}
		logError(r, "reconcile gateway return", err)
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// lastResult returns the most recent gateway callback result for the session,
// so the result page survives a refresh after the redirect.
func (h *Handler) lastResult(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionID(w, r)
	if !ok {
		return
	}

	res, found, err := h.results.Last(r.Context(), session)
	if err != nil {
		logError(r, "read last payment result", err)
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no_result", "no payment result for this session")
		return
	}

	writeJSON(w, http.StatusOK, res)
}
