package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/banhkem/checkout/internal/domain/cart"
	"github.com/banhkem/checkout/internal/domain/order"
)

var _ order.Creator = (*OrderClient)(nil)

// OrderClient talks to the external order service.
type OrderClient struct {
	base string
	http *http.Client
}

// NewOrderClient creates an OrderClient for the given base URL.
func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{base: baseURL, http: newHTTPClient(timeout)}
}

// createOrderBody is the flat wire shape the order service expects.
type createOrderBody struct {
	Items            []cart.Item     `json:"items"`
	DeliveryAddress  string          `json:"deliveryAddress"`
	DeliveryPhone    string          `json:"deliveryPhone"`
	DeliveryNote     string          `json:"deliveryNote,omitempty"`
	CustomerName     string          `json:"customerName"`
	CustomerEmail    string          `json:"customerEmail"`
	ClientOrderID    string          `json:"clientOrderId"`
	RequestTimestamp time.Time       `json:"requestTimestamp"`
	PaymentMethod    string          `json:"paymentMethod"`
	VoucherCode      string          `json:"voucherCode,omitempty"`
	OriginalTotal    decimal.Decimal `json:"originalTotal"`
	VoucherDiscount  decimal.Decimal `json:"voucherDiscount"`
	FinalTotal       decimal.Decimal `json:"finalTotal"`
}

// wireOrder covers the duck-typed order shapes the service has been seen to
// return: the id under "id" or "orderId", optionally nested under "order".
type wireOrder struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"orderId"`
	Status     string          `json:"status"`
	FinalPrice decimal.Decimal `json:"finalPrice"`
	Discount   decimal.Decimal `json:"voucherDiscount"`
}

func (w *wireOrder) normalize() (*order.Created, error) {
	id := w.ID
	if id == "" {
		id = w.OrderID
	}
	if id == "" {
		return nil, order.ErrNoOrderID
	}
	return &order.Created{
		ID:         id,
		Status:     w.Status,
		FinalPrice: w.FinalPrice,
		Discount:   w.Discount,
	}, nil
}

// Create submits the order request and normalizes whichever response shape
// comes back into order.Created.
func (c *OrderClient) Create(ctx context.Context, req *order.Request) (*order.Created, error) {
	body := createOrderBody{
		Items:            req.Items,
		DeliveryAddress:  req.Customer.Address,
		DeliveryPhone:    req.Customer.Phone,
		DeliveryNote:     req.Customer.Note,
		CustomerName:     req.Customer.Name,
		CustomerEmail:    req.Customer.Email,
		ClientOrderID:    req.ClientOrderID,
		RequestTimestamp: req.RequestedAt,
		PaymentMethod:    string(req.Method),
		VoucherCode:      req.VoucherCode,
		OriginalTotal:    req.Subtotal,
		VoucherDiscount:  req.Discount,
		FinalTotal:       req.Total,
	}

	var raw json.RawMessage
	if err := doJSON(ctx, c.http, http.MethodPost, joinURL(c.base, "/orders"), body, &raw); err != nil {
		return nil, err
	}
	return normalizeOrderResponse(raw)
}

// normalizeOrderResponse accepts `{"order": {...}}` and bare `{...}` bodies.
func normalizeOrderResponse(raw json.RawMessage) (*order.Created, error) {
	var envelope struct {
		Order *wireOrder `json:"order"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Order != nil {
		return envelope.Order.normalize()
	}

	var w wireOrder
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, errors.Wrap(err, "decode order response")
	}
	return w.normalize()
}

// GetByID fetches a single order.
func (c *OrderClient) GetByID(ctx context.Context, id string) (*order.Created, error) {
	var raw json.RawMessage
	if err := doJSON(ctx, c.http, http.MethodGet, joinURL(c.base, "/orders/"+id), nil, &raw); err != nil {
		return nil, err
	}
	return normalizeOrderResponse(raw)
}

// RemoteOrder is one row of the order service's own history listing.
type RemoteOrder struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	FinalPrice decimal.Decimal `json:"finalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// HistoryStatistics summarizes the remote history.
type HistoryStatistics struct {
	TotalOrders int             `json:"totalOrders"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
}

// HistoryPage is the order service's history response.
type HistoryPage struct {
	Orders     []RemoteOrder     `json:"orders"`
	Statistics HistoryStatistics `json:"statistics"`
}

// History fetches the caller's order history from the order service.
func (c *OrderClient) History(ctx context.Context) (*HistoryPage, error) {
	var page HistoryPage
	if err := doJSON(ctx, c.http, http.MethodGet, joinURL(c.base, "/orders/history"), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
