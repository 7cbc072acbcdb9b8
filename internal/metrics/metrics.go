// Package metrics exposes Prometheus instruments for settlements, store
// retries and HTTP traffic on a private registry.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

// Recorder implements port.SettlementObserver.
type Recorder struct {
	registry    *prometheus.Registry
	settlements *prometheus.CounterVec
	settleTime  *prometheus.HistogramVec
	txRetries   prometheus.Counter
	requests    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
}

var _ port.SettlementObserver = (*Recorder)(nil)

// New registers every instrument under namespace.
func New(namespace string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "decisions_total",
			Help:      "Settlement attempts by decision and outcome.",
		}, []string{"decision", "outcome"}),
		settleTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "duration_seconds",
			Help:      "Time spent settling a submission, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"decision"}),
		txRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "tx_retries_total",
			Help:      "Transactions replayed after a serialization failure or deadlock.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	r.registry.MustRegister(
		r.settlements, r.settleTime, r.txRetries, r.requests, r.durations,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveSettlement implements port.SettlementObserver.
func (r *Recorder) ObserveSettlement(kind domain.DecisionKind, err error, elapsed time.Duration) {
	r.settlements.WithLabelValues(string(kind), Outcome(err)).Inc()
	r.settleTime.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// ObserveRetry counts a replayed store transaction. Its signature matches
// the postgres store's retry hook.
func (r *Recorder) ObserveRetry(int, error) {
	r.txRetries.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Middleware records every request under its chi route pattern, so path
// parameters do not blow up label cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.requests.WithLabelValues(route, req.Method, strconv.Itoa(status)).Inc()
		r.durations.WithLabelValues(route, req.Method).Observe(time.Since(start).Seconds())
	})
}

// Outcome maps a settlement error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrBudgetExceeded):
		return "budget_exceeded"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, port.ErrConflictRetryExhausted):
		return "conflict_retry_exhausted"
	default:
		return "error"
	}
}
