package cart

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"FlashIt/pkg/kit"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	// NotifyChannel is the LISTEN/NOTIFY channel carrying changed slot keys.
	NotifyChannel = "cart_slots"

	relistenDelay = time.Second
)

// PostgresSlots stores carts in the cart_slots table. Every write also
// raises a NOTIFY with the key; a PostgresWatcher turns those into reloads.
type PostgresSlots struct {
	db      *sql.DB
	watcher *PostgresWatcher
}

// NewPostgresSlots returns a slot store on db. watcher may be nil, in which
// case Watch reports ErrWatchUnsupported.
func NewPostgresSlots(db *sql.DB, watcher *PostgresWatcher) *PostgresSlots {
	return &PostgresSlots{db: db, watcher: watcher}
}

func (s *PostgresSlots) Ping(ctx context.Context) error {
	return kit.WithTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresSlots) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var v string
	err := kit.WithTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT value
			FROM cart_slots
			WHERE key = $1
		`, key).Scan(&v)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(v), true, nil
}

func (s *PostgresSlots) Save(ctx context.Context, key string, value []byte) error {
	return kit.WithTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			WITH upsert AS (
				INSERT INTO cart_slots (key, value, updated_at)
				VALUES ($1, $2, now())
				ON CONFLICT (key) DO UPDATE
				SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
			)
			SELECT pg_notify($3, $1)
		`, key, string(value), NotifyChannel)
		return err
	})
}

func (s *PostgresSlots) Watch(ctx context.Context, key string, fn func()) (func(), error) {
	if s.watcher == nil {
		return nil, ErrWatchUnsupported
	}
	return s.watcher.watchers.add(key, fn), nil
}

// PostgresWatcher holds one dedicated LISTEN connection and dispatches
// notifications to the carts watching each key.
type PostgresWatcher struct {
	dsn      string
	log      *zap.Logger
	watchers watchSet

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPostgresWatcher connects, issues LISTEN and starts dispatching. The
// connection is re-established after failures until Close.
func NewPostgresWatcher(ctx context.Context, dsn string, log *zap.Logger) (*PostgresWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	conn, err := listen(ctx, dsn)
	if err != nil {
		return nil, err
	}

	rctx, cancel := context.WithCancel(context.Background())
	w := &PostgresWatcher{dsn: dsn, log: log, cancel: cancel}

	w.wg.Add(1)
	go w.run(rctx, conn)
	return w, nil
}

func listen(ctx context.Context, dsn string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{NotifyChannel}.Sanitize()); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}
	return conn, nil
}

func (w *PostgresWatcher) run(ctx context.Context, conn *pgx.Conn) {
	defer w.wg.Done()

	for {
		if conn != nil {
			err := w.dispatch(ctx, conn)
			_ = conn.Close(context.Background())
			conn = nil
			if ctx.Err() != nil {
				return
			}
			w.log.Warn("cart slot listener lost", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(relistenDelay):
		}

		c, err := listen(ctx, w.dsn)
		if err != nil {
			w.log.Warn("cart slot listen failed", zap.Error(err))
			continue
		}
		conn = c
		w.resync()
	}
}

// resync makes every watching cart re-read its slot after a reconnect, since
// notifications raised while the listener was down are lost. Carts ignore
// reloads of their own last write.
func (w *PostgresWatcher) resync() {
	w.watchers.notifyAll()
}

func (w *PostgresWatcher) dispatch(ctx context.Context, conn *pgx.Conn) error {
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		w.watchers.notify(n.Payload)
	}
}

func (w *PostgresWatcher) Close() error {
	w.cancel()
	w.wg.Wait()
	return nil
}
