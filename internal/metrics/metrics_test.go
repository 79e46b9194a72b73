package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAndExposition(t *testing.T) {
	m := New()
	m.Delivery("email", "failed")
	m.Delivery("email", "failed")
	m.Delivery("inApp", "delivered")
	m.Mutation("create")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("email", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("create")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(),
		`tasktrack_notification_deliveries_total{channel="inApp",status="delivered"} 1`))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Delivery("email", "delivered")
		m.Processed("dependency_created", "delivered")
		m.Mutation("remove")
		m.CacheLookup("hit")
		m.HookFailed("notify")
		m.ObserveHTTP("GET", "200", 0.1)
	})
}
