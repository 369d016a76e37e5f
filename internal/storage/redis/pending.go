package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/banhkem/checkout/internal/domain/order"
)

var _ order.PendingStore = (*PendingStore)(nil)

// PendingStore keeps pending-payment records under one key per
// (session, gateway). Records expire after a TTL so abandoned redirects do
// not accumulate.
type PendingStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewPendingStore returns a PendingStore writing records with the given TTL.
func NewPendingStore(rdb *goredis.Client, ttl time.Duration) *PendingStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &PendingStore{rdb: rdb, ttl: ttl}
}

func pendingKey(sessionID string, method order.PaymentMethod) string {
	return "checkout:pending:" + sessionID + ":" + string(method)
}

// Put overwrites the pending record for the (session, gateway) key.
func (s *PendingStore) Put(ctx context.Context, sessionID string, method order.PaymentMethod, rec order.PendingRecord) error {
	buf, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal pending record")
	}
	if err := s.rdb.Set(ctx, pendingKey(sessionID, method), buf, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "set pending record")
	}
	return nil
}

// Take reads and deletes the pending record in one step (GETDEL), so a
// record is consumed at most once no matter the reconciliation outcome.
func (s *PendingStore) Take(ctx context.Context, sessionID string, method order.PaymentMethod) (*order.PendingRecord, bool, error) {
	buf, err := s.rdb.GetDel(ctx, pendingKey(sessionID, method)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "getdel pending record")
	}

	var rec order.PendingRecord
	if err := json.Unmarshal(buf, &rec); err != nil {
		return nil, false, errors.Wrap(err, "unmarshal pending record")
	}
	return &rec, true, nil
}
