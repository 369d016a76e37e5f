package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/banhkem/checkout/internal/domain/settle"
)

var _ settle.ResultStore = (*ResultStore)(nil)

// resultTTL bounds how long the last payment result stays displayable.
const resultTTL = 24 * time.Hour

// ResultStore keeps the last callback result per session.
type ResultStore struct {
	rdb *goredis.Client
}

// NewResultStore returns a ResultStore on the given client.
func NewResultStore(rdb *goredis.Client) *ResultStore {
	return &ResultStore{rdb: rdb}
}

func resultKey(sessionID string) string {
	return "checkout:lastresult:" + sessionID
}

// Save overwrites the last payment result for the session.
func (s *ResultStore) Save(ctx context.Context, sessionID string, res settle.CallbackResult) error {
	buf, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, "marshal callback result")
	}
	if err := s.rdb.Set(ctx, resultKey(sessionID), buf, resultTTL).Err(); err != nil {
		return errors.Wrap(err, "set callback result")
	}
	return nil
}

// Last returns the most recent callback result, if any.
func (s *ResultStore) Last(ctx context.Context, sessionID string) (*settle.CallbackResult, bool, error) {
	buf, err := s.rdb.Get(ctx, resultKey(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "get callback result")
	}

	var res settle.CallbackResult
	if err := json.Unmarshal(buf, &res); err != nil {
		return nil, false, errors.Wrap(err, "unmarshal callback result")
	}
	return &res, true, nil
}

// PointsCache keeps the last known loyalty point balance per session.
type PointsCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewPointsCache returns a PointsCache with the given TTL.
func NewPointsCache(rdb *goredis.Client, ttl time.Duration) *PointsCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PointsCache{rdb: rdb, ttl: ttl}
}

func pointsKey(sessionID string) string {
	return "checkout:points:" + sessionID
}

// Set stores the point balance.
func (c *PointsCache) Set(ctx context.Context, sessionID string, points int) error {
	return c.rdb.Set(ctx, pointsKey(sessionID), points, c.ttl).Err()
}

// Get returns the cached balance, if any.
func (c *PointsCache) Get(ctx context.Context, sessionID string) (int, bool, error) {
	raw, err := c.rdb.Get(ctx, pointsKey(sessionID)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	points, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, errors.Wrap(err, "parse cached points")
	}
	return points, true, nil
}
