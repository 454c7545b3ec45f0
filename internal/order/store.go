package order

import "sync"

// Store is the authoritative in-memory order map. Values are copied on the
// way in and out, so callers never share a struct with the store.
type Store struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewStore() *Store {
	return &Store{
		orders: make(map[string]Order),
	}
}

func (s *Store) Get(id string) (Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, found := s.orders[id]
	return o, found
}

func (s *Store) Put(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

// Delete removes the order and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.orders[id]; !found {
		return false
	}
	delete(s.orders, id)
	return true
}

// List returns a point-in-time copy of every order. The slice is never nil
// so it marshals as [] instead of null.
func (s *Store) List() []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
