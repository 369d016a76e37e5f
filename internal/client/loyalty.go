package client

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/banhkem/checkout/internal/domain/voucher"
)

var _ voucher.Validator = (*LoyaltyClient)(nil)

// PointsCache keeps the last known loyalty point count per session so a
// loyalty-service outage never blocks the checkout flow.
type PointsCache interface {
	Get(ctx context.Context, sessionID string) (int, bool, error)
	Set(ctx context.Context, sessionID string, points int) error
}

// LoyaltyClient talks to the external loyalty service.
type LoyaltyClient struct {
	base  string
	http  *http.Client
	cache PointsCache
}

// NewLoyaltyClient creates a LoyaltyClient. cache may be nil to disable the
// points fallback.
func NewLoyaltyClient(baseURL string, timeout time.Duration, cache PointsCache) *LoyaltyClient {
	return &LoyaltyClient{base: baseURL, http: newHTTPClient(timeout), cache: cache}
}

// Vouchers fetches the caller's currently available vouchers.
func (c *LoyaltyClient) Vouchers(ctx context.Context) ([]voucher.Voucher, error) {
	var resp struct {
		Vouchers []voucher.Voucher `json:"vouchers"`
	}
	if err := doJSON(ctx, c.http, http.MethodGet, joinURL(c.base, "/vouchers"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Vouchers, nil
}

// Points returns the caller's loyalty point balance. On success the value is
// cached; on failure the cached value is served instead, and only when there
// is no cached value does the error surface.
func (c *LoyaltyClient) Points(ctx context.Context, sessionID string) (int, error) {
	var resp struct {
		CurrentPoints int `json:"currentPoints"`
	}
	err := doJSON(ctx, c.http, http.MethodGet, joinURL(c.base, "/points"), nil, &resp)
	if err == nil {
		if c.cache != nil {
			if cacheErr := c.cache.Set(ctx, sessionID, resp.CurrentPoints); cacheErr != nil {
				zctx.From(ctx).Warn("cache loyalty points", zap.Error(cacheErr))
			}
		}
		return resp.CurrentPoints, nil
	}

	if c.cache != nil {
		if cached, ok, cacheErr := c.cache.Get(ctx, sessionID); cacheErr == nil && ok {
			zctx.From(ctx).Warn("loyalty service unavailable, serving cached points", zap.Error(err))
			return cached, nil
		}
	}
	return 0, err
}

type validateVoucherBody struct {
	Code       string          `json:"code"`
	OrderTotal decimal.Decimal `json:"orderTotal"`
}

// ValidateVoucher asks the loyalty service whether a voucher is still valid
// for the given order total.
func (c *LoyaltyClient) ValidateVoucher(ctx context.Context, code string, orderTotal decimal.Decimal) (*voucher.Validation, error) {
	var resp struct {
		IsValid bool   `json:"isValid"`
		Message string `json:"message"`
	}
	err := doJSON(ctx, c.http, http.MethodPost, joinURL(c.base, "/vouchers/validate"), validateVoucherBody{
		Code:       code,
		OrderTotal: orderTotal,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &voucher.Validation{Valid: resp.IsValid, Message: resp.Message}, nil
}
