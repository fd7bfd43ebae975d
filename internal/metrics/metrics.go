package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	eventsAccepted      metric.Int64Counter
	eventsRejected      metric.Int64Counter
	duplicateFacts      metric.Int64Counter
	relationsReconciled metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "tally"
	}
	meter := provider.Meter(name)

	eventsAccepted, err := meter.Int64Counter("tally_events_accepted_total")
	if err != nil {
		return nil, err
	}
	eventsRejected, err := meter.Int64Counter("tally_events_rejected_total")
	if err != nil {
		return nil, err
	}
	duplicateFacts, err := meter.Int64Counter("tally_duplicate_facts_total")
	if err != nil {
		return nil, err
	}
	relationsReconciled, err := meter.Int64Counter("tally_relations_reconciled_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		eventsAccepted:      eventsAccepted,
		eventsRejected:      eventsRejected,
		duplicateFacts:      duplicateFacts,
		relationsReconciled: relationsReconciled,
	}, nil
}

// RecordEventAccepted counts a fully processed event.
func (m *Metrics) RecordEventAccepted(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.eventsAccepted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordEventRejected counts an event that failed a processing stage.
func (m *Metrics) RecordEventRejected(ctx context.Context, kind, stage string) {
	if m == nil {
		return
	}
	m.eventsRejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("stage", stage),
	))
}

// RecordDuplicateFact counts a re-delivered natural key.
func (m *Metrics) RecordDuplicateFact(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.duplicateFacts.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRelationReconciled counts a relation settled exactly once.
func (m *Metrics) RecordRelationReconciled(ctx context.Context) {
	if m == nil {
		return
	}
	m.relationsReconciled.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch protocol {
	case "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported metrics exporter protocol %q", protocol)
	}
}
