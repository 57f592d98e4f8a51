package observability

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFlushWaitsForInFlightPush(t *testing.T) {
	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	t.Setenv("GRAFANA_LOKI_URL", srv.URL)
	t.Setenv("GRAFANA_LOKI_USER", "user")
	t.Setenv("GRAFANA_LOKI_API_KEY", "key")
	Init("run-test")

	LogFlowEvent("testprovider", "flow_succeeded", map[string]any{"ok": true})
	Flush(2 * time.Second)

	if received.Load() != 1 {
		t.Errorf("pushes received before Flush returned = %d, want 1", received.Load())
	}
}

func TestFlushDisabledClient(t *testing.T) {
	t.Setenv("GRAFANA_LOKI_URL", "")
	t.Setenv("GRAFANA_LOKI_USER", "")
	t.Setenv("GRAFANA_LOKI_API_KEY", "")
	Init("run-test")

	LogFlowEvent("testprovider", "flow_started", nil)
	Flush(10 * time.Millisecond)
}
