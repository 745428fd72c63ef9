package cart

import (
	"context"
	"sync"
)

// MemSlots keeps slots in process memory. Every Save is reported to the
// key's watchers, which lets several carts share one key the way browser
// tabs share local storage.
type MemSlots struct {
	mu       sync.RWMutex
	m        map[string][]byte
	watchers watchSet
}

func NewMemSlots() *MemSlots {
	return &MemSlots{m: make(map[string][]byte)}
}

func (s *MemSlots) Ping(ctx context.Context) error { return nil }

func (s *MemSlots) Load(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemSlots) Save(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.m[key] = append([]byte(nil), value...)
	s.mu.Unlock()

	s.watchers.notify(key)
	return nil
}

// Put writes value without going through a cart, as another context would.
func (s *MemSlots) Put(key string, value []byte) {
	_ = s.Save(context.Background(), key, value)
}

func (s *MemSlots) Watch(ctx context.Context, key string, fn func()) (func(), error) {
	return s.watchers.add(key, fn), nil
}
