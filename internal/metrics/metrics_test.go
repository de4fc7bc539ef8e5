package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// TestMetrics_Record checks counters and the gauge.
func TestMetrics_Record(t *testing.T) {
	t.Parallel()

	m := New()

	m.RecordSweep(map[string]int{"ZOMBIE": 3, "COW": 1})
	m.RecordSweep(nil)
	m.RecordSweepError()
	m.RecordWarning(StageBeforeClear2)
	m.SetEnabled(true)

	require.InDelta(t, 2, testutil.ToFloat64(m.SweepsTotal), 0)
	require.InDelta(t, 3, testutil.ToFloat64(m.EntitiesRemovedTotal.WithLabelValues("ZOMBIE")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.SweepErrorsTotal), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.WarningsTotal.WithLabelValues(StageBeforeClear2)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.Enabled), 0)

	m.SetEnabled(false)
	require.InDelta(t, 0, testutil.ToFloat64(m.Enabled), 0)
}

// TestMetrics_NilIsNoop allows a scheduler to run without metrics.
func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics

	require.NotPanics(t, func() {
		m.RecordSweep(map[string]int{"ZOMBIE": 1})
		m.RecordSweepError()
		m.RecordWarning(StageBeforeClear1)
		m.SetEnabled(true)
	})
}

// TestMetrics_Handler serves the registry in the text exposition format.
func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordSweep(map[string]int{"ZOMBIE": 2})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `clearmob_entities_removed_total{kind="ZOMBIE"} 2`)
}
