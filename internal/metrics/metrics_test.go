package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viral-reward/internal/core/domain"
	"viral-reward/internal/core/port"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "budget_exceeded", Outcome(fmt.Errorf("campaign x: %w", domain.ErrBudgetExceeded)))
	assert.Equal(t, "conflict_retry_exhausted", Outcome(port.ErrConflictRetryExhausted))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestObserveSettlement(t *testing.T) {
	r := New("test")
	r.ObserveSettlement(domain.DecisionApprove, nil, time.Millisecond)
	r.ObserveSettlement(domain.DecisionApprove, domain.ErrInsufficientFunds, time.Millisecond)
	r.ObserveSettlement(domain.DecisionApprove, nil, time.Millisecond)
	r.ObserveRetry(1, errors.New("40001"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.settlements.WithLabelValues("approve", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.settlements.WithLabelValues("approve", "insufficient_funds")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.txRetries))
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := New("test")
	router := chi.NewRouter()
	router.Use(r.Middleware)
	router.Get("/campaigns/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router.Method(http.MethodGet, "/metrics", r.Handler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campaigns/abc", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("/campaigns/{id}", "GET", "418")))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_http_requests_total"))
}
