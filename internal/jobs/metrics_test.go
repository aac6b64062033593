package jobmetrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample returns the value of the series named name whose labels include
// every pair in labels.
func sample(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range family.GetMetric() {
			got := map[string]string{}
			for _, pair := range metric.GetLabel() {
				got[pair.GetName()] = pair.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue metrics
				}
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("series %s%v not found", name, labels)
	return 0
}

func TestTrackerRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	assert.NoError(t, m.Track("pos:sales_summary").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("pos:sales_summary").End(boom), boom)

	assert.Equal(t, 1.0, sample(t, reg, "celtis_jobs_total", map[string]string{"job": "pos:sales_summary", "status": "success"}))
	assert.Equal(t, 1.0, sample(t, reg, "celtis_jobs_total", map[string]string{"job": "pos:sales_summary", "status": "failure"}))
	assert.Equal(t, 1.0, sample(t, reg, "celtis_jobs_failures_total", map[string]string{"job": "pos:sales_summary"}))
}

func TestTrackerStampsLastSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	done := time.Date(2024, 3, 2, 0, 5, 0, 0, time.UTC)

	tr := m.Track("pos:sales_summary")
	tr.now = func() time.Time { return done }
	require.NoError(t, tr.End(nil))

	failed := m.Track("pos:sales_summary")
	failed.now = func() time.Time { return done.Add(time.Hour) }
	require.Error(t, failed.End(errors.New("boom")))

	assert.Equal(t, float64(done.Unix()), sample(t, reg, "celtis_jobs_last_success_timestamp_seconds", map[string]string{"job": "pos:sales_summary"}))
}

func TestSetSummarisedSales(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.SetSummarisedSales("cash", 4, 5000)
	m.SetSummarisedSales("cash", 2, 1296)

	assert.Equal(t, 2.0, sample(t, reg, "celtis_jobs_summary_sales", map[string]string{"method": "cash"}))
	assert.Equal(t, 1296.0, sample(t, reg, "celtis_jobs_summary_amount_cents", map[string]string{"method": "cash"}))
}

func TestNilMetricsTracker(t *testing.T) {
	var m *Metrics
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("x").End(boom), boom)
	m.SetSummarisedSales("cash", 1, 100)
}
