package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xtree/lib/infra"
)

type MetricsExporterType string

const (
	NoneMetricsExporter       MetricsExporterType = "none"
	ConsoleMetricsExporter    MetricsExporterType = "stdout"
	PrometheusMetricsExporter MetricsExporterType = "prometheus"
)

var ErrUnknownMetricsExporter = errors.New("[observability] unknown metrics exporter")

func ParseMetricsExporterType(s string) (MetricsExporterType, error) {
	switch typ := MetricsExporterType(strings.ToLower(strings.TrimSpace(s))); typ {
	case "", NoneMetricsExporter:
		return NoneMetricsExporter, nil
	case ConsoleMetricsExporter, PrometheusMetricsExporter:
		return typ, nil
	default:
		return "", infra.WrapErrorStackWithMessage(ErrUnknownMetricsExporter, fmt.Sprintf("exporter %q", s))
	}
}

type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error {
	return nil
}

// InitMetricsExporter installs the global meter provider of the exporter.
// The console exporter pushes every interval, the prometheus exporter is
// pulled through the default prometheus registry.
func InitMetricsExporter(typ MetricsExporterType, interval time.Duration, opts ...stdoutmetric.Option) (ShutdownFunc, error) {
	switch typ {
	case ConsoleMetricsExporter:
		return newConsoleMetricsExporter(interval, interval, opts...)
	case PrometheusMetricsExporter:
		return newPrometheusMetricsExporter()
	case NoneMetricsExporter, "":
		return noopShutdown, nil
	}
	return nil, infra.WrapErrorStackWithMessage(ErrUnknownMetricsExporter, fmt.Sprintf("exporter %q", string(typ)))
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (ShutdownFunc, error) {
	if interval <= 0 {
		interval = 10 * time.Second
		timeout = interval
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter() (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
