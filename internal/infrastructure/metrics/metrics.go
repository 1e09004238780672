package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contadores e histogramas de generación de documentos SIFEN.
// Un *Metrics nil es válido: los métodos no hacen nada.
type Metrics struct {
	Generated       *prometheus.CounterVec
	ValidationFails *prometheus.CounterVec
	Events          *prometheus.CounterVec
	BuildLatency    *prometheus.HistogramVec
}

// New registra las métricas en reg (nil => registro por defecto de Prometheus).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Generated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sifen_documents_generated_total",
			Help: "Documentos electrónicos generados por tipo de documento",
		}, []string{"tipo"}),

		ValidationFails: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sifen_validation_failures_total",
			Help: "Validaciones rechazadas por operación",
		}, []string{"operation"}), // operation: "document", "event"

		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sifen_events_generated_total",
			Help: "Eventos generados por tipo",
		}, []string{"evento"}),

		BuildLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sifen_xml_build_duration_seconds",
			Help:    "Duración del armado del XML",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"kind"}), // kind: "de", "evento"
	}
}

// IncGenerated cuenta un DE generado.
func (m *Metrics) IncGenerated(tipo string) {
	if m != nil {
		m.Generated.WithLabelValues(tipo).Inc()
	}
}

// IncValidationFailure cuenta una validación fallida.
func (m *Metrics) IncValidationFailure(operation string) {
	if m != nil {
		m.ValidationFails.WithLabelValues(operation).Inc()
	}
}

// IncEvent cuenta un evento generado.
func (m *Metrics) IncEvent(evento string) {
	if m != nil {
		m.Events.WithLabelValues(evento).Inc()
	}
}

// ObserveBuild registra la duración de un armado de XML.
func (m *Metrics) ObserveBuild(kind string, d time.Duration) {
	if m != nil {
		m.BuildLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}
