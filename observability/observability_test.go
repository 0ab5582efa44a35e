package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestParseMetricsExporterType(t *testing.T) {
	testcases := []struct {
		in       string
		expected MetricsExporterType
		wantErr  bool
	}{
		{"", NoneMetricsExporter, false},
		{"none", NoneMetricsExporter, false},
		{" Stdout ", ConsoleMetricsExporter, false},
		{"prometheus", PrometheusMetricsExporter, false},
		{"otlp", "", true},
	}
	for _, tc := range testcases {
		t.Run(tc.in, func(tt *testing.T) {
			typ, err := ParseMetricsExporterType(tc.in)
			if tc.wantErr {
				require.ErrorIs(tt, err, ErrUnknownMetricsExporter)
				return
			}
			require.NoError(tt, err)
			require.Equal(tt, tc.expected, typ)
		})
	}
}

func TestInitMetricsExporter(t *testing.T) {
	shutdown, err := InitMetricsExporter(NoneMetricsExporter, 0)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	shutdown, err = InitMetricsExporter(ConsoleMetricsExporter, time.Hour)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, err = InitMetricsExporter("otlp", time.Second)
	require.ErrorIs(t, err, ErrUnknownMetricsExporter)
	require.EqualError(t, err, `exporter "otlp": [observability] unknown metrics exporter`)
}

func TestProcessRSS(t *testing.T) {
	rss, err := ProcessRSS()
	require.NoError(t, err)
	require.Greater(t, rss, uint64(0))
}

func TestInitAppStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)

	defer func() {
		_ = mp.Shutdown(context.Background())
	}()
	InitAppStats("unit-test")
	InitAppStats("ignored")
	require.NotNil(t, stats)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := make(map[string]struct{})
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != "xtree/app/unit-test" {
			continue
		}
		for _, m := range sm.Metrics {
			names[m.Name] = struct{}{}
		}
	}
	require.Contains(t, names, "app.core.goroutines")
	require.Contains(t, names, "app.core.processes")
	require.Contains(t, names, "app.core.rss")
}
