// Package memory provides in-process implementations of the durable stores
// with the same semantics as the Redis versions: overwrite-per-key pending
// records consumed exactly once, and a capped newest-first history. Used in
// tests and for running the service without Redis.
package memory

import (
	"context"
	"sync"

	"github.com/banhkem/checkout/internal/domain/order"
	"github.com/banhkem/checkout/internal/domain/settle"
)

var (
	_ order.PendingStore = (*PendingStore)(nil)
	_ order.HistoryStore = (*HistoryStore)(nil)
	_ settle.ResultStore = (*ResultStore)(nil)
)

// PendingStore keeps pending-payment records in a map.
type PendingStore struct {
	mu      sync.Mutex
	records map[string]order.PendingRecord
}

// NewPendingStore returns an empty PendingStore.
func NewPendingStore() *PendingStore {
	return &PendingStore{records: make(map[string]order.PendingRecord)}
}

func pendingKey(sessionID string, method order.PaymentMethod) string {
	return sessionID + ":" + string(method)
}

// Put overwrites the record for the (session, gateway) key.
func (s *PendingStore) Put(_ context.Context, sessionID string, method order.PaymentMethod, rec order.PendingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[pendingKey(sessionID, method)] = rec
	return nil
}

// Take removes and returns the record, consuming it.
func (s *PendingStore) Take(_ context.Context, sessionID string, method order.PaymentMethod) (*order.PendingRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pendingKey(sessionID, method)
	rec, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	delete(s.records, key)
	return &rec, true, nil
}

// HistoryStore keeps per-session history slices, newest first, capped at
// order.HistoryLimit.
type HistoryStore struct {
	mu      sync.Mutex
	entries map[string][]order.HistoryEntry
}

// NewHistoryStore returns an empty HistoryStore.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{entries: make(map[string][]order.HistoryEntry)}
}

// Append prepends the entry and evicts the oldest past the cap.
func (s *HistoryStore) Append(_ context.Context, sessionID string, entry order.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append([]order.HistoryEntry{entry}, s.entries[sessionID]...)
	if len(list) > order.HistoryLimit {
		list = list[:order.HistoryLimit]
	}
	s.entries[sessionID] = list
	return nil
}

// List returns the history, newest first.
func (s *HistoryStore) List(_ context.Context, sessionID string) ([]order.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]order.HistoryEntry(nil), s.entries[sessionID]...), nil
}

// ResultStore keeps the last callback result per session.
type ResultStore struct {
	mu      sync.Mutex
	results map[string]settle.CallbackResult
}

// NewResultStore returns an empty ResultStore.
func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]settle.CallbackResult)}
}

// Save overwrites the last result for the session.
func (s *ResultStore) Save(_ context.Context, sessionID string, res settle.CallbackResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[sessionID] = res
	return nil
}

// Last returns the most recent result, if any.
func (s *ResultStore) Last(_ context.Context, sessionID string) (*settle.CallbackResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.results[sessionID]
	if !ok {
		return nil, false, nil
	}
	return &res, true, nil
}

// PointsCache keeps loyalty point balances per session.
type PointsCache struct {
	mu     sync.Mutex
	points map[string]int
}

// NewPointsCache returns an empty PointsCache.
func NewPointsCache() *PointsCache {
	return &PointsCache{points: make(map[string]int)}
}

// Set stores the balance.
func (c *PointsCache) Set(_ context.Context, sessionID string, points int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.points[sessionID] = points
	return nil
}

// Get returns the cached balance, if any.
func (c *PointsCache) Get(_ context.Context, sessionID string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.points[sessionID]
	return p, ok, nil
}
