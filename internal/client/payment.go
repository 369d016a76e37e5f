package client

import (
	"context"
	"net/http"
	"time"

	"github.com/banhkem/checkout/internal/domain/settle"
)

var _ settle.StatusChecker = (*PaymentClient)(nil)

// PaymentClient talks to the external payment service, which fronts both
// gateways.
type PaymentClient struct {
	base string
	http *http.Client
}

// NewPaymentClient creates a PaymentClient for the given base URL.
func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{base: baseURL, http: newHTTPClient(timeout)}
}

type createPaymentBody struct {
	OrderID string `json:"orderId"`
}

// CreateVNPayPayment requests a VNPay redirect URL for an existing order.
func (c *PaymentClient) CreateVNPayPayment(ctx context.Context, orderID string) (*settle.PaymentTarget, error) {
	var resp struct {
		PaymentURL string `json:"paymentUrl"`
	}
	err := doJSON(ctx, c.http, http.MethodPost, joinURL(c.base, "/payments/vnpay"), createPaymentBody{OrderID: orderID}, &resp)
	if err != nil {
		return nil, err
	}
	return &settle.PaymentTarget{RedirectURL: resp.PaymentURL}, nil
}

// CreateMoMoPayment requests a MoMo pay URL (and, when available, a QR code
// target) for an existing order.
func (c *PaymentClient) CreateMoMoPayment(ctx context.Context, orderID string) (*settle.PaymentTarget, error) {
	var resp struct {
		PayURL    string `json:"payUrl"`
		QRCodeURL string `json:"qrCodeUrl"`
	}
	err := doJSON(ctx, c.http, http.MethodPost, joinURL(c.base, "/payments/momo"), createPaymentBody{OrderID: orderID}, &resp)
	if err != nil {
		return nil, err
	}
	return &settle.PaymentTarget{RedirectURL: resp.PayURL, QRCodeURL: resp.QRCodeURL}, nil
}

// PaymentStatus asks the payment service for the server-side status of an
// order's payment.
func (c *PaymentClient) PaymentStatus(ctx context.Context, orderID string) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	err := doJSON(ctx, c.http, http.MethodGet, joinURL(c.base, "/payments/"+orderID+"/status"), nil, &resp)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}
