package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records consultation level meters through OpenTelemetry.
// A zero value is safe to use and records nothing.
type Observability struct {
	meterProvider        *metric.MeterProvider
	consultationCounter  otelmetric.Int64Counter
	consultationDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	counter, _ := meter.Int64Counter(
		"consultations.processed",
		otelmetric.WithDescription("Number of consultation runs by status"),
	)
	duration, _ := meter.Float64Histogram(
		"consultations.duration",
		otelmetric.WithDescription("Consultation pipeline duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:        provider,
		consultationCounter:  counter,
		consultationDuration: duration,
	}
}

func (o *Observability) RecordConsultation(ctx context.Context, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.consultationCounter != nil {
		o.consultationCounter.Add(ctx, 1, attrs)
	}
	if o.consultationDuration != nil {
		o.consultationDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
