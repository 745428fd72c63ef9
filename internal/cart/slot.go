package cart

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrWatchUnsupported is returned by Watch when the backend was built
	// without a change feed.
	ErrWatchUnsupported = errors.New("slot watch unsupported")
	// ErrNotifyFailed wraps a failure to announce a write that itself
	// succeeded.
	ErrNotifyFailed = errors.New("slot change notification failed")
)

// Slot is a durable key-value store holding one serialized cart per key.
type Slot interface {
	// Load returns the stored bytes and whether the key exists.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// Watcher is implemented by slots that can report writes to a key,
// including writes made by other processes. fn must not block.
type Watcher interface {
	Watch(ctx context.Context, key string, fn func()) (stop func(), err error)
}

// watchSet fans key changes out to registered callbacks.
type watchSet struct {
	mu   sync.Mutex
	next int
	m    map[string]map[int]func()
}

func (w *watchSet) add(key string, fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.m == nil {
		w.m = make(map[string]map[int]func())
	}
	if w.m[key] == nil {
		w.m[key] = make(map[int]func())
	}
	id := w.next
	w.next++
	w.m[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.m[key], id)
			if len(w.m[key]) == 0 {
				delete(w.m, key)
			}
		})
	}
}

func (w *watchSet) notify(key string) {
	w.mu.Lock()
	fns := make([]func(), 0, len(w.m[key]))
	for _, fn := range w.m[key] {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// notifyAll reports a change on every watched key.
func (w *watchSet) notifyAll() {
	w.mu.Lock()
	var fns []func()
	for _, m := range w.m {
		for _, fn := range m {
			fns = append(fns, fn)
		}
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (w *watchSet) len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, fns := range w.m {
		n += len(fns)
	}
	return n
}
