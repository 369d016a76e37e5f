package settle

import (
	"context"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/banhkem/checkout/internal/domain/order"
)

// ErrNoCallbackData is returned when a gateway return URL carries no query
// parameters at all. This is an error page, not a payment failure.
var ErrNoCallbackData = errors.New("no callback data in return url")

// StatusPaid is the history status recorded after a successful gateway payment.
const StatusPaid = "Paid"

// successCode is the response/transaction-status value meaning "paid".
const successCode = "00"

// CallbackResult is the interpreted outcome of a gateway return. It is built
// once from the callback parameters plus the response-code table and never
// mutated afterwards.
type CallbackResult struct {
	Success       bool            `json:"success"`
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId"`
	BankCode      string          `json:"bankCode"`
	PayDate       string          `json:"payDate"`
	ResponseCode  string          `json:"responseCode"`
	Message       string          `json:"message"`
}

// ResultStore persists the last callback result per session for later
// display, independent of the order history.
type ResultStore interface {
	Save(ctx context.Context, sessionID string, res CallbackResult) error
	Last(ctx context.Context, sessionID string) (*CallbackResult, bool, error)
}

// Reconciler interprets gateway return parameters and folds the outcome into
// local state. It never re-drives settlement; it only records what happened.
type Reconciler struct {
	pending order.PendingStore
	history order.HistoryStore
	results ResultStore
	status  StatusChecker
	now     func() time.Time
}

// NewReconciler wires a Reconciler. status may be nil to skip server-side
// verification entirely.
func NewReconciler(pending order.PendingStore, history order.HistoryStore, results ResultStore, status StatusChecker) *Reconciler {
	return &Reconciler{
		pending: pending,
		history: history,
		results: results,
		status:  status,
		now:     time.Now,
	}
}

// Reconcile handles a gateway return. The locally derived result (success iff
// response code and transaction status are both "00") is authoritative for
// display; the server-side verification is best effort and its failure never
// flips the result. The matching pending record is consumed exactly once,
// whatever the outcome.
func (r *Reconciler) Reconcile(ctx context.Context, sessionID string, method order.PaymentMethod, params url.Values) (*CallbackResult, error) {
	lg := zctx.From(ctx)

	if len(params) == 0 {
		return nil, ErrNoCallbackData
	}

	rec, found, err := r.pending.Take(ctx, sessionID, method)
	if err != nil {
		lg.Error("read pending payment record", zap.Error(err))
		found = false
	}
	if !found {
		lg.Warn("no pending payment record for callback",
			zap.String("method", string(method)),
		)
	}

	res := parseCallback(params)
	if res.OrderID == "" && found {
		res.OrderID = rec.OrderID
	}

	// Best-effort server verification. Logged only; the local result stands.
	if r.status != nil && res.OrderID != "" {
		if status, err := r.status.PaymentStatus(ctx, res.OrderID); err != nil {
			lg.Warn("payment status verification failed", zap.Error(err))
		} else if (status == StatusPaid) != res.Success {
			lg.Warn("payment status disagrees with callback result",
				zap.String("server_status", status),
				zap.Bool("callback_success", res.Success),
			)
		}
	}

	if res.Success && found {
		entry := order.HistoryEntry{
			OrderID:       rec.OrderID,
			TotalPrice:    rec.CartTotal,
			OriginalTotal: rec.Request.Subtotal,
			VoucherCode:   rec.Request.VoucherCode,
			Discount:      rec.Request.Discount,
			Status:        StatusPaid,
			Method:        method,
			CustomerName:  rec.Customer.Name,
			CustomerEmail: rec.Customer.Email,
			TransactionID: res.TransactionID,
			BankCode:      res.BankCode,
			PayDate:       res.PayDate,
			CreatedAt:     r.now(),
		}
		if err := r.history.Append(ctx, sessionID, entry); err != nil {
			lg.Error("append history after callback", zap.Error(err))
		}
	}

	if err := r.results.Save(ctx, sessionID, res); err != nil {
		lg.Error("persist callback result", zap.Error(err))
	}

	return &res, nil
}

// parseCallback flattens gateway return parameters into a CallbackResult.
// VNPay prefixes its parameters with "vnp_"; MoMo returns come through the
// payment service with plain names. Both spellings are accepted.
func parseCallback(params url.Values) CallbackResult {
	responseCode := param(params, "vnp_ResponseCode", "responseCode")
	txnStatus := param(params, "vnp_TransactionStatus", "transactionStatus")

	res := CallbackResult{
		Success:       responseCode == successCode && txnStatus == successCode,
		OrderID:       param(params, "vnp_TxnRef", "orderId"),
		TransactionID: param(params, "vnp_TransactionNo", "transactionId"),
		BankCode:      param(params, "vnp_BankCode", "bankCode"),
		PayDate:       param(params, "vnp_PayDate", "payDate"),
		ResponseCode:  responseCode,
		Message:       ResponseMessage(responseCode),
	}

	// VNPay reports amounts multiplied by 100; plain amounts come as-is.
	if raw := params.Get("vnp_Amount"); raw != "" {
		if amount, err := decimal.NewFromString(raw); err == nil {
			res.Amount = amount.Div(decimal.NewFromInt(100))
		}
	} else if raw := params.Get("amount"); raw != "" {
		if amount, err := decimal.NewFromString(raw); err == nil {
			res.Amount = amount
		}
	}

	return res
}

// param returns the first non-empty value among the given keys.
func param(params url.Values, keys ...string) string {
	for _, k := range keys {
		if v := params.Get(k); v != "" {
			return v
		}
	}
	return ""
}
