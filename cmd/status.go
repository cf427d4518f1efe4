package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/ingest"
)

// statusSource reports the controller's progress.
type statusSource interface {
	State() ingest.State
	Stats() ingest.Stats
}

func statusRouter(src statusSource) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		state := src.State()
		code := http.StatusOK
		if state == ingest.StateShuttingDown || state == ingest.StateStopped {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"state": state.String(),
			"stats": src.Stats(),
		})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// serveStatus runs the health and metrics endpoint until ctx is done.
func serveStatus(ctx context.Context, addr string, src statusSource) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           statusRouter(src),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	zap.L().Info("starting status server", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "status server listen")
	}
	return nil
}
