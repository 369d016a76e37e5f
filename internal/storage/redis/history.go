package redis

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/banhkem/checkout/internal/domain/order"
)

var _ order.HistoryStore = (*HistoryStore)(nil)

// HistoryStore keeps the per-session order history as a Redis list, newest
// first, trimmed to order.HistoryLimit entries on every append.
type HistoryStore struct {
	rdb *goredis.Client
}

// NewHistoryStore returns a HistoryStore on the given client.
func NewHistoryStore(rdb *goredis.Client) *HistoryStore {
	return &HistoryStore{rdb: rdb}
}

func historyKey(sessionID string) string {
	return "checkout:history:" + sessionID
}

// Append pushes the entry to the front of the list and evicts anything past
// the cap.
func (s *HistoryStore) Append(ctx context.Context, sessionID string, entry order.HistoryEntry) error {
	buf, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "marshal history entry")
	}

	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, historyKey(sessionID), buf)
	pipe.LTrim(ctx, historyKey(sessionID), 0, int64(order.HistoryLimit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "push history entry")
	}
	return nil
}

// List returns the history, newest first.
func (s *HistoryStore) List(ctx context.Context, sessionID string) ([]order.HistoryEntry, error) {
	raw, err := s.rdb.LRange(ctx, historyKey(sessionID), 0, int64(order.HistoryLimit-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "range history")
	}

	entries := make([]order.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var e order.HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, errors.Wrap(err, "unmarshal history entry")
		}
		entries = append(entries, e)
	}
	return entries, nil
}
