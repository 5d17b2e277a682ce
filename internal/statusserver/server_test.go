package statusserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/keshon/nvbot/internal/docs"
	"github.com/keshon/nvbot/internal/metrics"
	"github.com/keshon/nvbot/pkg/cmd"
)

type readiness struct{ atomic.Bool }

func (r *readiness) Ready() bool { return r.Load() }

func newServer(t *testing.T, ready *readiness) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sections := func() []docs.Section {
		return []docs.Section{{Category: "utility", Commands: []cmd.Definition{
			{Name: "ping", Description: "Check latency", Cooldown: 5 * time.Second},
		}}}
	}
	return New("127.0.0.1:0", reg, ready, sections, zerolog.Nop()), reg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	ready := &readiness{}
	s, _ := newServer(t, ready)

	assert.Equal(t, http.StatusServiceUnavailable, get(t, s.Handler(), "/healthz").Code)
	ready.Store(true)
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/healthz").Code)
}

func TestCommands(t *testing.T) {
	s, _ := newServer(t, &readiness{})

	rec := get(t, s.Handler(), "/commands")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, int64(1), body.Get("#").Int())
	assert.Equal(t, "ping", body.Get("0.name").String())
	assert.Equal(t, "utility", body.Get("0.category").String())
	assert.Equal(t, int64(5), body.Get("0.cooldown_seconds").Int())
}

func TestMetrics(t *testing.T) {
	s, reg := newServer(t, &readiness{})
	metrics.New(reg).ObserveDispatch("ping", "completed")

	rec := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `nvbot_dispatch_total{command="ping",outcome="completed"} 1`)
}

func TestRunStopsOnCancel(t *testing.T) {
	s, _ := newServer(t, &readiness{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
