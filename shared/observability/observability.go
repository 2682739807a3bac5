package observability

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Metrics holds the chat and dashboard domain counters
type Metrics struct {
	MessagesAppended   prometheus.Counter
	MessagesRejected   prometheus.Counter
	ConversationsPurge prometheus.Counter
	DirectoryRefreshes prometheus.Counter
	WSSessionsActive   prometheus.Gauge
	UnreadNotifies     prometheus.Counter
}

// NewMetrics registers and returns the domain metrics
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_appended_total",
			Help: "Messages durably appended to the message store",
		}),
		MessagesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_rejected_total",
			Help: "Sends rejected by validation before any store write",
		}),
		ConversationsPurge: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chat_conversations_purged_total",
			Help: "Conversations deleted together with their message log",
		}),
		DirectoryRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chat_directory_refreshes_total",
			Help: "Operator conversation directory rebuilds",
		}),
		WSSessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "chat_ws_sessions_active",
			Help: "Open websocket chat sessions",
		}),
		UnreadNotifies: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chat_unread_notifications_total",
			Help: "Unread-count increments pushed to unfocused sessions",
		}),
	}
}

// SetupTracing initializes OpenTelemetry tracing with stdout exporter (for demo; replace with OTLP in prod)
func SetupTracing(serviceName string) func() {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Fatalf("failed to initialize stdouttrace exporter: %v", err)
	}
	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
	provider := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	return func() { _ = provider.Shutdown(context.Background()) }
}

// SetupPrometheusMetrics initializes the Prometheus metrics exporter and
// exposes the /metrics endpoint on its own listener
func SetupPrometheusMetrics(addr string) *metric.MeterProvider {
	exp, err := otelprom.New()
	if err != nil {
		log.Fatalf("failed to initialize prometheus exporter: %v", err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exp))
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(addr, mux)
	}()
	return mp
}
