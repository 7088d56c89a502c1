package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.CacheLookup("weatherRef", "hit")
	m.CacheLookup("weatherRef", "hit")
	m.CacheLookup("geo", "miss")
	m.SnapshotRead("corrupt")
	m.ProviderCall("geocode", "ok", 20*time.Millisecond)
	m.WritebackTask("snapshot_put", "failed")
	m.WritebackQueueDepth(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("weatherRef", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("geo", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshotReads.WithLabelValues("corrupt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerCalls.WithLabelValues("geocode", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writebackTasks.WithLabelValues("snapshot_put", "failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.writebackQueue))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheLookup("geo", "hit")
		m.SnapshotRead("hit")
		m.ProviderCall("weather", "ok", time.Millisecond)
		m.WritebackTask("cache_set", "ok")
		m.WritebackQueueDepth(1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.WritebackTask("event_append", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `city_weather_writeback_tasks_total{outcome="ok",task="event_append"} 1`)
}
