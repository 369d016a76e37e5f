package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banhkem/checkout/internal/domain/order"
)

func testOrderRequest() *order.Request {
	return &order.Request{
		Customer: order.Customer{
			Name:    "Ngọc Anh",
			Email:   "ngocanh@example.com",
			Phone:   "0901234567",
			Address: "12 Lý Thường Kiệt",
		},
		ClientOrderID: "1726000000000-0001",
		Method:        order.MethodCOD,
		Subtotal:      decimal.NewFromInt(100000),
		Discount:      decimal.NewFromInt(10000),
		Total:         decimal.NewFromInt(90000),
	}
}

func TestOrderCreate_NormalizesResponseShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantID   string
		wantErr  error
		wantStat string
	}{
		{"bare order with id", `{"id":"ord-1","status":"Placed"}`, "ord-1", nil, "Placed"},
		{"bare order with orderId", `{"orderId":"ord-2"}`, "ord-2", nil, ""},
		{"nested order envelope", `{"order":{"id":"ord-3","status":"Placed","finalPrice":90000}}`, "ord-3", nil, "Placed"},
		{"nested with orderId", `{"order":{"orderId":"ord-4"}}`, "ord-4", nil, ""},
		{"no id anywhere", `{"status":"Placed"}`, "", order.ErrNoOrderID, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/orders", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewOrderClient(srv.URL, time.Second)
			created, err := c.Create(context.Background(), testOrderRequest())

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, created.ID)
			assert.Equal(t, tt.wantStat, created.Status)
		})
	}
}

func TestOrderCreate_StructuredErrorSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"Hết hàng"}`))
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, time.Second)
	_, err := c.Create(context.Background(), testOrderRequest())

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Hết hàng", svcErr.Message)
	assert.Equal(t, "Hết hàng", svcErr.Error())
}

func TestOrderCreate_UnstructuredErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream exploded</html>"))
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, time.Second)
	_, err := c.Create(context.Background(), testOrderRequest())

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, genericErrorMessage, svcErr.Message)
	assert.Equal(t, http.StatusBadGateway, svcErr.StatusCode)
}

func TestOrderCreate_MessageFieldAlsoAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Số lượng không hợp lệ"}`))
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, time.Second)
	_, err := c.Create(context.Background(), testOrderRequest())

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Số lượng không hợp lệ", svcErr.Message)
}

func TestPaymentClient_VNPay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/vnpay", r.URL.Path)
		_, _ = w.Write([]byte(`{"paymentUrl":"https://sandbox.vnpayment.vn/pay?ref=ord-1"}`))
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, time.Second)
	target, err := c.CreateVNPayPayment(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.vnpayment.vn/pay?ref=ord-1", target.RedirectURL)
	assert.Empty(t, target.QRCodeURL)
}

func TestPaymentClient_MoMo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/momo", r.URL.Path)
		_, _ = w.Write([]byte(`{"payUrl":"https://test-payment.momo.vn/pay","qrCodeUrl":"https://test-payment.momo.vn/qr"}`))
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, time.Second)
	target, err := c.CreateMoMoPayment(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "https://test-payment.momo.vn/pay", target.RedirectURL)
	assert.Equal(t, "https://test-payment.momo.vn/qr", target.QRCodeURL)
}

func TestPaymentClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/ord-1/status", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"Paid"}`))
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, time.Second)
	status, err := c.PaymentStatus(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "Paid", status)
}
