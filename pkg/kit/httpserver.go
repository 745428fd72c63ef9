package kit

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Closer is a teardown step run after the HTTP server drained.
type Closer func(ctx context.Context) error

// RunHTTPServer serves h until SIGINT/SIGTERM, then shuts the server down and
// runs the closers in order. Closer errors are combined with the shutdown error.
func RunHTTPServer(addr string, h http.Handler, log *zap.Logger, closers ...Closer) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case sig := <-stop:
		log.Info("shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return multierr.Append(err, runClosers(context.Background(), closers))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(ctx)
	return multierr.Append(err, runClosers(ctx, closers))
}

func runClosers(ctx context.Context, closers []Closer) error {
	var err error
	for _, c := range closers {
		err = multierr.Append(err, c(ctx))
	}
	return err
}
