package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banhkem/checkout/internal/domain/order"
	"github.com/banhkem/checkout/internal/domain/settle"
)

func TestPendingStore_TakeConsumesRecord(t *testing.T) {
	s := NewPendingStore()
	ctx := context.Background()

	rec := order.PendingRecord{
		OrderID:   "ord-1",
		CartTotal: decimal.NewFromInt(90000),
		Customer:  order.Customer{Name: "Ngọc Anh", Email: "ngocanh@example.com"},
		Method:    order.MethodVNPay,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.Put(ctx, "sess-1", order.MethodVNPay, rec))

	got, found, err := s.Take(ctx, "sess-1", order.MethodVNPay)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ord-1", got.OrderID)
	assert.True(t, decimal.NewFromInt(90000).Equal(got.CartTotal))
	assert.Equal(t, "Ngọc Anh", got.Customer.Name)

	// Second take finds nothing: consumed at most once.
	_, found, err = s.Take(ctx, "sess-1", order.MethodVNPay)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPendingStore_PutOverwrites(t *testing.T) {
	s := NewPendingStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sess-1", order.MethodMoMo, order.PendingRecord{OrderID: "ord-1"}))
	require.NoError(t, s.Put(ctx, "sess-1", order.MethodMoMo, order.PendingRecord{OrderID: "ord-2"}))

	got, found, err := s.Take(ctx, "sess-1", order.MethodMoMo)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ord-2", got.OrderID)
}

func TestPendingStore_GatewaysAreIndependent(t *testing.T) {
	s := NewPendingStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sess-1", order.MethodVNPay, order.PendingRecord{OrderID: "ord-v"}))
	require.NoError(t, s.Put(ctx, "sess-1", order.MethodMoMo, order.PendingRecord{OrderID: "ord-m"}))

	got, found, err := s.Take(ctx, "sess-1", order.MethodVNPay)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ord-v", got.OrderID)
}

func TestHistoryStore_CapEvictsOldest(t *testing.T) {
	s := NewHistoryStore()
	ctx := context.Background()

	for i := 0; i < order.HistoryLimit; i++ {
		require.NoError(t, s.Append(ctx, "sess-1", order.HistoryEntry{
			OrderID: fmt.Sprintf("ord-%d", i),
		}))
	}

	list, err := s.List(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, list, order.HistoryLimit)
	assert.Equal(t, "ord-0", list[order.HistoryLimit-1].OrderID)

	// One past the cap: newest in front, the original oldest gone.
	require.NoError(t, s.Append(ctx, "sess-1", order.HistoryEntry{OrderID: "ord-new"}))

	list, err = s.List(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, list, order.HistoryLimit)
	assert.Equal(t, "ord-new", list[0].OrderID)
	assert.Equal(t, "ord-1", list[order.HistoryLimit-1].OrderID)
	for _, e := range list {
		assert.NotEqual(t, "ord-0", e.OrderID, "oldest entry must be evicted")
	}
}

func TestHistoryStore_NewestFirst(t *testing.T) {
	s := NewHistoryStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "sess-1", order.HistoryEntry{OrderID: "first"}))
	require.NoError(t, s.Append(ctx, "sess-1", order.HistoryEntry{OrderID: "second"}))

	list, err := s.List(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].OrderID)
}

func TestHistoryStore_SessionsAreIsolated(t *testing.T) {
	s := NewHistoryStore()
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "sess-1", order.HistoryEntry{OrderID: "a"}))

	list, err := s.List(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResultStore_SaveAndLast(t *testing.T) {
	s := NewResultStore()
	ctx := context.Background()

	_, found, err := s.Last(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Save(ctx, "sess-1", settle.CallbackResult{
		Success:      true,
		OrderID:      "ord-1",
		ResponseCode: "00",
	}))
	require.NoError(t, s.Save(ctx, "sess-1", settle.CallbackResult{
		Success:      false,
		OrderID:      "ord-2",
		ResponseCode: "24",
	}))

	res, found, err := s.Last(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ord-2", res.OrderID)
	assert.False(t, res.Success)
}

func TestPointsCache(t *testing.T) {
	c := NewPointsCache()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "sess-1", 420))
	points, ok, err := c.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 420, points)
}
