// Package metrics exposes the Prometheus metrics of the users client and
// view. The metrics themselves are declared with promauto in the packages
// that record them (client, ratelimit, viewmodel); this package serves them.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/users-pagination/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gatherer is the source scraped by Handler. promauto registers every
// metric with the matching default registerer.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the /metrics handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// HealthHandler answers liveness probes.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// NewMux routes /metrics and /health.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", Handler())
	mux.HandleFunc("GET /health", HealthHandler)
	return mux
}

// Serve runs the metrics server on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	logger := logging.NewLogger(logging.ComponentServer)

	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Starting metrics server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info().Msg("Stopping metrics server")
		return srv.Shutdown(shutdownCtx)
	}
}

// Metric catalogue
//
// Request metrics (pkg/client):
//   - users_requests_total{endpoint, status} (Counter): listing requests by HTTP status or "network_error"
//   - users_request_duration_seconds{endpoint} (Histogram): request duration including retries
//   - users_errors_total{class} (Counter): failures by class (client, server, rate_limit, network, decode, unexpected)
//
// Retry metrics (pkg/client, only with MAX_RETRIES > 0):
//   - users_retries_total{error_class} (Counter): retry attempts
//   - users_retry_backoff_seconds{error_class} (Histogram): backoff waits
//   - users_retry_exhausted_total{error_class} (Counter): requests that ran out of attempts
//
// View metrics (pkg/viewmodel):
//   - users_view_transitions_total{state} (Counter): published views by state
//   - users_view_stale_responses_total (Counter): responses dropped because a newer request started
//
// Back-off metrics (pkg/ratelimit):
//   - users_rate_limit_blocks_total (Counter): requests refused locally during a Retry-After back-off
//   - users_rate_limit_backoff_seconds (Gauge): back-off requested by the most recent 429, 0 once cleared
//
// Example queries:
//
//	# Failed page loads
//	rate(users_view_transitions_total{state="APP_ERROR"}[5m])
//
//	# P95 listing latency
//	histogram_quantile(0.95, rate(users_request_duration_seconds_bucket[5m]))
