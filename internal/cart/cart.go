package cart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StorageKey is the slot key of a cart that was not given one.
const StorageKey = "flashit_cart"

const msgSaveFailed = "Error saving cart. Please try again."

type ChangeKind string

const (
	// ChangeBadge follows every successful save; the item count may differ.
	ChangeBadge ChangeKind = "badge"
	// ChangeView asks for the full cart view to be redrawn.
	ChangeView ChangeKind = "view"
	// ChangeExternal reports that the cart was reloaded after another
	// context wrote the same key.
	ChangeExternal ChangeKind = "external"
)

type Change struct {
	Kind   ChangeKind `json:"kind"`
	Totals Totals     `json:"totals"`
}

// Listener observes cart changes. It is called without the cart lock held
// and may read the cart, but must not block for long.
type Listener func(Change)

type Options struct {
	// Key is the slot key; StorageKey when empty.
	Key  string
	Slot Slot
	// Pricing defaults to DefaultPricing when zero.
	Pricing Pricing
	// Confirmer guards Clear; AlwaysConfirm when nil.
	Confirmer Confirmer
	Notifier  Notifier
	Log       *zap.Logger
	Metrics   *Metrics
	Now       func() time.Time
}

// Cart owns an ordered list of line items, mirrors it to a Slot after every
// mutation and derives totals on demand. Storage failures never reach the
// caller: reads fall back to an empty cart, failed writes keep the in-memory
// state and raise an error notification.
type Cart struct {
	key     string
	slot    Slot
	pricing Pricing
	confirm Confirmer
	notify  Notifier
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time

	mu        sync.Mutex
	items     []LineItem
	lastSaved []byte

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int

	stopWatch func()
	wake      chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New loads the cart stored under opts.Key and, when the slot supports it,
// starts following writes made to that key by other contexts.
func New(ctx context.Context, opts Options) *Cart {
	c := &Cart{
		key:       opts.Key,
		slot:      opts.Slot,
		pricing:   opts.Pricing,
		confirm:   opts.Confirmer,
		notify:    opts.Notifier,
		log:       opts.Log,
		metrics:   opts.Metrics,
		now:       opts.Now,
		listeners: make(map[int]Listener),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	if c.key == "" {
		c.key = StorageKey
	}
	if c.slot == nil {
		c.slot = NewMemSlots()
	}
	if c.pricing.isZero() {
		c.pricing = DefaultPricing()
	}
	if c.confirm == nil {
		c.confirm = AlwaysConfirm
	}
	if c.notify == nil {
		c.notify = nopNotifier{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}

	c.items, c.lastSaved = c.load(ctx)
	c.watch(ctx)
	return c
}

func (c *Cart) Key() string { return c.key }

func (c *Cart) Pricing() Pricing { return c.pricing }

// load reads the slot. A missing key, an unreadable slot or a value that
// does not decode all yield an empty cart.
func (c *Cart) load(ctx context.Context) ([]LineItem, []byte) {
	raw, ok, err := c.slot.Load(ctx, c.key)
	if err != nil {
		c.log.Warn("error loading cart", zap.String("key", c.key), zap.Error(err))
		c.metrics.storageFailure(storageRead)
		return []LineItem{}, nil
	}
	if !ok {
		return []LineItem{}, nil
	}

	items, err := decodeItems(raw)
	if err != nil {
		c.log.Warn("error loading cart", zap.String("key", c.key), zap.Error(err))
		c.metrics.storageFailure(storageRead)
		return []LineItem{}, raw
	}
	return items, raw
}

func (c *Cart) watch(ctx context.Context) {
	w, ok := c.slot.(Watcher)
	if !ok {
		return
	}

	stop, err := w.Watch(ctx, c.key, func() {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	})
	if err != nil {
		if !errors.Is(err, ErrWatchUnsupported) {
			c.log.Warn("cart watch failed", zap.String("key", c.key), zap.Error(err))
		}
		return
	}
	c.stopWatch = stop

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.done:
				return
			case <-c.wake:
				c.Reload(context.Background())
			}
		}
	}()
}

// persistLocked writes the current items. It reports whether the slot now
// holds them.
func (c *Cart) persistLocked(ctx context.Context) bool {
	raw, err := encodeItems(c.items)
	if err != nil {
		c.log.Error("error encoding cart", zap.String("key", c.key), zap.Error(err))
		c.metrics.storageFailure(storageWrite)
		return false
	}

	err = c.slot.Save(ctx, c.key, raw)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotifyFailed):
		c.log.Warn("cart saved without change notification", zap.String("key", c.key), zap.Error(err))
	default:
		c.log.Error("error saving cart", zap.String("key", c.key), zap.Error(err))
		c.metrics.storageFailure(storageWrite)
		return false
	}

	c.lastSaved = raw
	return true
}

// AddItem appends a line for item.ID or, when one exists, raises its
// quantity by item.Quantity. The existing line keeps its original name,
// price and image. Callers coerce the quantity to at least 1; AddItem
// repeats that coercion on purpose so no line ever holds less than 1.
func (c *Cart) AddItem(ctx context.Context, item NewItem) {
	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}

	c.mu.Lock()
	if i := indexOf(c.items, item.ID); i >= 0 {
		c.items[i].Quantity += qty
	} else {
		c.items = append(c.items, LineItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Image:    item.Image,
			Quantity: qty,
			AddedAt:  c.now(),
		})
	}
	saved := c.persistLocked(ctx)
	totals := c.pricing.Calculate(c.items)
	c.mu.Unlock()

	c.metrics.mutation(opAdd)
	if !saved {
		c.emit(LevelError, msgSaveFailed)
		return
	}
	c.dispatch(Change{Kind: ChangeBadge, Totals: totals})
	c.emit(LevelSuccess, fmt.Sprintf("%s added to cart!", item.Name))
}

// RemoveItem drops the line for id. It reports false, and touches nothing,
// when there is no such line.
func (c *Cart) RemoveItem(ctx context.Context, id int) bool {
	c.mu.Lock()
	removed, saved, ok := c.removeLocked(ctx, id)
	totals := c.pricing.Calculate(c.items)
	c.mu.Unlock()

	if !ok {
		return false
	}
	c.afterRemove(removed, saved, totals)
	return true
}

func (c *Cart) removeLocked(ctx context.Context, id int) (LineItem, bool, bool) {
	i := indexOf(c.items, id)
	if i < 0 {
		return LineItem{}, false, false
	}
	removed := c.items[i]

	kept := make([]LineItem, 0, len(c.items)-1)
	kept = append(kept, c.items[:i]...)
	kept = append(kept, c.items[i+1:]...)
	c.items = kept

	return removed, c.persistLocked(ctx), true
}

func (c *Cart) afterRemove(removed LineItem, saved bool, totals Totals) {
	c.metrics.mutation(opRemove)
	if saved {
		c.dispatch(Change{Kind: ChangeBadge, Totals: totals})
		c.emit(LevelInfo, fmt.Sprintf("%s removed from cart", removed.Name))
	} else {
		c.emit(LevelError, msgSaveFailed)
	}
	c.dispatch(Change{Kind: ChangeView, Totals: totals})
}

// UpdateQuantity sets the quantity of the line for id. Zero or a negative
// quantity removes the line; anything else is clamped to [1, MaxQuantity].
// It reports false when there is no such line.
func (c *Cart) UpdateQuantity(ctx context.Context, id, quantity int) bool {
	c.mu.Lock()

	if quantity <= 0 {
		removed, saved, ok := c.removeLocked(ctx, id)
		totals := c.pricing.Calculate(c.items)
		c.mu.Unlock()

		if ok {
			c.afterRemove(removed, saved, totals)
		}
		return ok
	}

	i := indexOf(c.items, id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.items[i].Quantity = max(1, min(c.pricing.maxQuantity(), quantity))
	saved := c.persistLocked(ctx)
	totals := c.pricing.Calculate(c.items)
	c.mu.Unlock()

	c.metrics.mutation(opUpdate)
	if saved {
		c.dispatch(Change{Kind: ChangeBadge, Totals: totals})
	} else {
		c.emit(LevelError, msgSaveFailed)
	}
	c.dispatch(Change{Kind: ChangeView, Totals: totals})
	return true
}

// Clear empties the cart after the configured Confirmer agrees.
func (c *Cart) Clear(ctx context.Context) bool {
	return c.ClearWith(ctx, c.confirm)
}

// ClearWith empties the cart after confirm agrees. An empty cart is left
// alone without asking. It reports whether the cart was cleared.
func (c *Cart) ClearWith(ctx context.Context, confirm Confirmer) bool {
	if confirm == nil {
		confirm = c.confirm
	}
	if c.Len() == 0 {
		return false
	}
	if !confirm.Confirm(ctx, ClearPrompt) {
		return false
	}

	c.mu.Lock()
	// The cart may have been emptied while the confirmer was asking.
	if len(c.items) == 0 {
		c.mu.Unlock()
		return false
	}
	c.items = []LineItem{}
	saved := c.persistLocked(ctx)
	totals := c.pricing.Calculate(c.items)
	c.mu.Unlock()

	c.metrics.mutation(opClear)
	if !saved {
		c.emit(LevelError, msgSaveFailed)
		c.dispatch(Change{Kind: ChangeView, Totals: totals})
		return true
	}
	c.dispatch(Change{Kind: ChangeBadge, Totals: totals})
	c.dispatch(Change{Kind: ChangeView, Totals: totals})
	c.emit(LevelSuccess, "Cart cleared successfully")
	return true
}

// Totals recomputes the derived amounts from the current items.
func (c *Cart) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pricing.Calculate(c.items)
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

// Snapshot returns items and the totals derived from exactly those items.
func (c *Cart) Snapshot() ([]LineItem, Totals) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items), c.pricing.Calculate(c.items)
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Reload re-reads the slot and adopts its content when it differs from what
// this cart last wrote. The last writer wins; nothing is merged.
func (c *Cart) Reload(ctx context.Context) bool {
	c.mu.Lock()
	raw, ok, err := c.slot.Load(ctx, c.key)
	if err != nil {
		c.mu.Unlock()
		c.log.Warn("error reloading cart", zap.String("key", c.key), zap.Error(err))
		c.metrics.storageFailure(storageRead)
		return false
	}
	if !ok {
		raw = nil
	}
	if bytes.Equal(raw, c.lastSaved) {
		c.mu.Unlock()
		return false
	}

	items := []LineItem{}
	if raw != nil {
		decoded, err := decodeItems(raw)
		if err != nil {
			c.log.Warn("error loading cart", zap.String("key", c.key), zap.Error(err))
			c.metrics.storageFailure(storageRead)
		} else {
			items = decoded
		}
	}
	c.items = items
	c.lastSaved = raw
	totals := c.pricing.Calculate(c.items)
	c.mu.Unlock()

	c.metrics.reload()
	c.dispatch(Change{Kind: ChangeExternal, Totals: totals})
	return true
}

// Subscribe registers l and returns a function that unregisters it.
func (c *Cart) Subscribe(l Listener) func() {
	c.lmu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.lmu.Unlock()

	return func() {
		c.lmu.Lock()
		delete(c.listeners, id)
		c.lmu.Unlock()
	}
}

func (c *Cart) listening() bool {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	return len(c.listeners) > 0
}

func (c *Cart) dispatch(ch Change) {
	c.lmu.Lock()
	ls := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	c.lmu.Unlock()

	for _, l := range ls {
		l(ch)
	}
}

func (c *Cart) emit(level Level, msg string) {
	c.notify.Notify(Notification{Level: level, Message: msg, At: c.now()})
}

// Close stops following external writes. The cart stays usable.
func (c *Cart) Close() error {
	c.closeOnce.Do(func() {
		if c.stopWatch != nil {
			c.stopWatch()
		}
		close(c.done)
		c.wg.Wait()
	})
	return nil
}
