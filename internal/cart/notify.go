package cart

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// DisplayDuration is how long a notification stays visible before it is
// dismissed.
const DisplayDuration = 3 * time.Second

type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives user-facing messages. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

// Notifiers fans a notification out to each member in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(n Notification) {
	for _, x := range ns {
		x.Notify(n)
	}
}

// LogNotifier writes notifications to a logger at debug level, error
// notifications at warn.
type LogNotifier struct {
	Log *zap.Logger
}

func (l LogNotifier) Notify(n Notification) {
	if l.Log == nil {
		return
	}
	fields := []zap.Field{zap.String("level", string(n.Level)), zap.String("message", n.Message)}
	if n.Level == LevelError {
		l.Log.Warn("cart notification", fields...)
		return
	}
	l.Log.Debug("cart notification", fields...)
}

// Inbox holds the single notification currently on screen. A new
// notification replaces the previous one; each is dismissed DisplayDuration
// after it arrived.
type Inbox struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	current *Notification
	shownAt time.Time
}

func NewInbox() *Inbox {
	return &Inbox{ttl: DisplayDuration, now: time.Now}
}

func (b *Inbox) Notify(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shownAt = b.now()
	if n.At.IsZero() {
		n.At = b.shownAt
	}
	b.current = &n
}

// Current returns the visible notification, if any.
func (b *Inbox) Current() (Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return Notification{}, false
	}
	if b.now().Sub(b.shownAt) >= b.ttl {
		b.current = nil
		return Notification{}, false
	}
	return *b.current, true
}

// Dismiss hides the current notification early.
func (b *Inbox) Dismiss() {
	b.mu.Lock()
	b.current = nil
	b.mu.Unlock()
}
