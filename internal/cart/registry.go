package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrRegistryClosed = errors.New("cart registry closed")

// DefaultIdleTimeout is how long an unused cart stays open.
const DefaultIdleTimeout = 30 * time.Minute

// maxSweepInterval bounds the time between sweeps of idle carts.
const maxSweepInterval = time.Minute

type RegistryOptions struct {
	// KeyPrefix namespaces slot keys; StorageKey when empty.
	KeyPrefix string
	Slot      Slot
	Pricing   Pricing
	// IdleTimeout closes carts not opened for this long; DefaultIdleTimeout
	// when zero or negative. Carts with subscribers are kept.
	IdleTimeout time.Duration
	Log         *zap.Logger
	Metrics     *Metrics
	Now         func() time.Time
}

type entry struct {
	// ready is closed once cart and inbox are set.
	ready    chan struct{}
	cart     *Cart
	inbox    *Inbox
	lastUsed time.Time
}

func (e *entry) opened() bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// Registry holds one Cart per shopper session, each under its own slot key.
// Carts are opened on first use and closed after IdleTimeout without use;
// the next Open reloads them from the slot.
type Registry struct {
	opts RegistryOptions

	mu        sync.Mutex
	carts     map[string]*entry
	closed    bool
	lastSweep time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = StorageKey
	}
	if opts.Slot == nil {
		opts.Slot = NewMemSlots()
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	r := &Registry{
		opts:  opts,
		carts: make(map[string]*entry),
		stop:  make(chan struct{}),
	}
	r.lastSweep = r.now()

	r.wg.Add(1)
	go r.janitor()
	return r
}

func (r *Registry) now() time.Time {
	if r.opts.Now != nil {
		return r.opts.Now()
	}
	return time.Now()
}

func (r *Registry) sweepInterval() time.Duration {
	return min(r.opts.IdleTimeout, maxSweepInterval)
}

// KeyFor is the slot key used for session.
func (r *Registry) KeyFor(session string) string {
	return r.opts.KeyPrefix + ":" + session
}

// Open returns the cart and notification inbox of session, creating them
// on first use. Loading a cart does not block other sessions.
func (r *Registry) Open(ctx context.Context, session string) (*Cart, *Inbox, error) {
	now := r.now()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, nil, ErrRegistryClosed
	}

	if e, ok := r.carts[session]; ok {
		e.lastUsed = now
		r.mu.Unlock()

		select {
		case <-e.ready:
			return e.cart, e.inbox, nil
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}

	e := &entry{ready: make(chan struct{}), lastUsed: now}
	r.carts[session] = e
	sweep := now.Sub(r.lastSweep) >= r.sweepInterval()
	r.mu.Unlock()

	log := r.opts.Log.With(zap.String("session", session))
	e.inbox = NewInbox()
	// The cart outlives the request that opened it.
	e.cart = New(context.WithoutCancel(ctx), Options{
		Key:       r.KeyFor(session),
		Slot:      r.opts.Slot,
		Pricing:   r.opts.Pricing,
		Confirmer: NeverConfirm,
		Notifier:  Notifiers{e.inbox, LogNotifier{Log: log}},
		Log:       log,
		Metrics:   r.opts.Metrics,
		Now:       r.opts.Now,
	})
	close(e.ready)
	r.opts.Metrics.open(1)

	if sweep {
		r.Evict()
	}
	return e.cart, e.inbox, nil
}

// Evict closes every cart unused for IdleTimeout that has no subscribers.
// It returns the number of carts closed.
func (r *Registry) Evict() int {
	now := r.now()
	cutoff := now.Add(-r.opts.IdleTimeout)

	r.mu.Lock()
	r.lastSweep = now
	var idle []*entry
	for session, e := range r.carts {
		if !e.opened() || e.lastUsed.After(cutoff) || e.cart.listening() {
			continue
		}
		delete(r.carts, session)
		idle = append(idle, e)
	}
	r.mu.Unlock()

	for _, e := range idle {
		_ = e.cart.Close()
		r.opts.Metrics.open(-1)
	}
	if len(idle) > 0 {
		r.opts.Log.Debug("idle carts closed", zap.Int("count", len(idle)))
	}
	return len(idle)
}

func (r *Registry) janitor() {
	defer r.wg.Done()

	t := time.NewTicker(r.sweepInterval())
	defer t.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-t.C:
			r.Evict()
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

func (r *Registry) Ping(ctx context.Context) error {
	return r.opts.Slot.Ping(ctx)
}

// Close releases every cart. Later calls to Open fail with
// ErrRegistryClosed.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	carts := r.carts
	r.carts = make(map[string]*entry)
	r.closed = true
	r.mu.Unlock()

	close(r.stop)
	r.wg.Wait()

	var err error
	for _, e := range carts {
		<-e.ready
		err = multierr.Append(err, e.cart.Close())
		r.opts.Metrics.open(-1)
	}
	return err
}
