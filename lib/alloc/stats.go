package alloc

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	AllocatorStatsName = "xtree/alloc"
)

type allocatorStats struct {
	attrs         metric.MeasurementOption
	allocations   metric.Int64Counter
	deallocations metric.Int64Counter
	failures      metric.Int64Counter
	live          metric.Int64UpDownCounter
}

func (stats *allocatorStats) IncreaseAllocations(objs int64) {
	if stats == nil {
		return
	}
	stats.allocations.Add(context.Background(), 1, stats.attrs)
	stats.live.Add(context.Background(), objs, stats.attrs)
}

func (stats *allocatorStats) IncreaseDeallocations(objs int64) {
	if stats == nil {
		return
	}
	stats.deallocations.Add(context.Background(), 1, stats.attrs)
	stats.live.Add(context.Background(), -objs, stats.attrs)
}

func (stats *allocatorStats) IncreaseFailures() {
	if stats == nil {
		return
	}
	stats.failures.Add(context.Background(), 1, stats.attrs)
}

func newAllocatorStats(name string) *allocatorStats {
	meterName := fmt.Sprintf("%s/%s", AllocatorStatsName, name)
	meter := otel.Meter(meterName)
	return &allocatorStats{
		attrs: metric.WithAttributeSet(attribute.NewSet(
			attribute.String("xtree.alloc.name", name),
		)),
		allocations: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.alloc.allocations",
			metric.WithDescription("The number of allocate calls served."),
		)),
		deallocations: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.alloc.deallocations",
			metric.WithDescription("The number of deallocate calls served."),
		)),
		failures: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xtree.alloc.failures",
			metric.WithDescription("The number of allocate calls rejected by the wrapped allocator."),
		)),
		live: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"xtree.alloc.live",
			metric.WithDescription("The number of objects allocated and not yet released."),
		)),
	}
}
