package voucher

import "sync"

// Selection holds the at-most-one voucher currently chosen for the order.
// Selecting the already-selected code toggles it off, which is how the
// checkout UI treats a second tap on the same voucher.
type Selection struct {
	mu      sync.Mutex
	current *Voucher
}

// Toggle selects v, or deselects it when v.Code is already the current
// selection. It reports whether a voucher is selected afterwards.
func (s *Selection) Toggle(v Voucher) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.Code == v.Code {
		s.current = nil
		return false
	}
	s.current = &v
	return true
}

// Current returns a copy of the selected voucher, or nil when none is selected.
func (s *Selection) Current() *Voucher {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	v := *s.current
	return &v
}

// Clear drops the current selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
