package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"goa.design/clue/log"

	"github.com/fakeyudi/stride/internal/tracker"
)

const shutdownTimeout = 5 * time.Second

// Serve listens on addr until ctx is cancelled, then drains in-flight
// requests.
func Serve(ctx context.Context, addr string, svc *tracker.Service, opts ...Option) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(ctx, svc, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, log.KV{K: "msg", V: "listening"}, log.KV{K: "addr", V: addr})
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info(ctx, log.KV{K: "msg", V: "server stopped"})
	return nil
}
