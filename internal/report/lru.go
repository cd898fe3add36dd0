package report

import (
	"container/list"
	"sync"
)

// LRUStore keeps recently used reports in memory and delegates to a
// backing Store. The MCP server inspects the same few runs repeatedly.
type LRUStore struct {
	mu      sync.Mutex
	size    int
	back    Store
	entries map[string]*list.Element // report id -> element holding *Report
	order   *list.List               // most recently used at front
}

// NewLRUStore creates a cache holding at most size reports in front of back.
func NewLRUStore(size int, back Store) *LRUStore {
	if size < 1 {
		size = 1
	}
	return &LRUStore{
		size:    size,
		back:    back,
		entries: make(map[string]*list.Element, size),
		order:   list.New(),
	}
}

// Save writes r through to the backing store and caches it.
func (s *LRUStore) Save(r *Report) error {
	if err := s.back.Save(r); err != nil {
		return err
	}
	s.mu.Lock()
	s.remember(r)
	s.mu.Unlock()
	return nil
}

// Load serves from the cache, falling back to the backing store.
func (s *LRUStore) Load(id string) (*Report, error) {
	s.mu.Lock()
	if elem, ok := s.entries[id]; ok {
		s.order.MoveToFront(elem)
		r := elem.Value.(*Report)
		s.mu.Unlock()
		return r, nil
	}
	s.mu.Unlock()

	r, err := s.back.Load(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.remember(r)
	s.mu.Unlock()
	return r, nil
}

// Len returns the number of cached reports.
func (s *LRUStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// remember caches r as most recently used, evicting the oldest entry when
// full. Callers hold s.mu.
func (s *LRUStore) remember(r *Report) {
	if elem, ok := s.entries[r.ID]; ok {
		elem.Value = r
		s.order.MoveToFront(elem)
		return
	}
	s.entries[r.ID] = s.order.PushFront(r)

	for s.order.Len() > s.size {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*Report).ID)
	}
}
