package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	Port        int
}

// EngineMetrics aggregates the Prometheus collectors exposed by the lifecycle
// engine. All counters are labelled by the event kind that drove them.
type EngineMetrics struct {
	Invocations    *prometheus.CounterVec
	PostingsEmitted *prometheus.CounterVec
	Rejections     *prometheus.CounterVec
	Notifications  *prometheus.CounterVec
}

// NewEngineMetrics registers the engine collectors with the default registry.
func NewEngineMetrics(serviceName string) *EngineMetrics {
	labels := prometheus.Labels{"service": serviceName}
	return &EngineMetrics{
		Invocations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "mortgage_engine_invocations_total",
			Help:        "Engine invocations by event kind.",
			ConstLabels: labels,
		}, []string{"event_kind"}),
		PostingsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "mortgage_engine_postings_emitted_total",
			Help:        "Ledger postings emitted by event kind.",
			ConstLabels: labels,
		}, []string{"event_kind"}),
		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "mortgage_engine_rejections_total",
			Help:        "Rejected inbound requests by reason category.",
			ConstLabels: labels,
		}, []string{"category"}),
		Notifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "mortgage_engine_notifications_total",
			Help:        "Notifications produced by type.",
			ConstLabels: labels,
		}, []string{"type"}),
	}
}

// InitMetrics initializes the Prometheus metrics exporter.
// Returns the MeterProvider and an HTTP handler for the /metrics endpoint.
func InitMetrics(_ MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	return provider, promhttp.Handler(), nil
}
