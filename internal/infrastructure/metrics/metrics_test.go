package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sifen-api/internal/infrastructure/metrics"
)

func TestMetrics_Contadores(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.IncGenerated("1")
	m.IncGenerated("1")
	m.IncValidationFailure("event")
	m.IncEvent("cancelacion")
	m.ObserveBuild("de", 2*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Generated.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFails.WithLabelValues("event")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("cancelacion")))

	n, err := testutil.GatherAndCount(reg, "sifen_xml_build_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_NilEsSeguro(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.IncGenerated("1")
		m.IncValidationFailure("document")
		m.IncEvent("inutilizacion")
		m.ObserveBuild("evento", time.Millisecond)
	})
}
