package alloc

import (
	"sync/atomic"
)

var _ Allocator[struct{}] = (*CountingAllocator[struct{}])(nil)

type allocCounters struct {
	allocations   atomic.Int64
	deallocations atomic.Int64
	live          atomic.Int64
}

// CountingAllocator wraps another allocator and counts the Allocate and
// Deallocate calls going through it. Copies share the counters, so a
// container and all the containers copied from it report into the same
// numbers.
type CountingAllocator[T any] struct {
	inner    Allocator[T]
	counters *allocCounters
	stats    *allocatorStats
	policy   PropagationPolicy
}

func (a *CountingAllocator[T]) Allocate(n int) (*T, error) {
	ptr, err := a.inner.Allocate(n)
	if err != nil {
		a.stats.IncreaseFailures()
		return nil, err
	}
	a.counters.allocations.Add(1)
	a.counters.live.Add(int64(n))
	a.stats.IncreaseAllocations(int64(n))
	return ptr, nil
}

func (a *CountingAllocator[T]) Deallocate(ptr *T, n int) {
	if ptr == nil || n <= 0 {
		return
	}
	a.counters.deallocations.Add(1)
	a.counters.live.Add(-int64(n))
	a.stats.IncreaseDeallocations(int64(n))
	a.inner.Deallocate(ptr, n)
}

func (a *CountingAllocator[T]) Equal(other Allocator[T]) bool {
	o, ok := other.(*CountingAllocator[T])
	return ok && o.counters == a.counters && a.inner.Equal(o.inner)
}

func (a *CountingAllocator[T]) Policy() PropagationPolicy {
	return a.policy
}

func (a *CountingAllocator[T]) Allocations() int64 {
	return a.counters.allocations.Load()
}

func (a *CountingAllocator[T]) Deallocations() int64 {
	return a.counters.deallocations.Load()
}

// Live returns the number of objects allocated and not yet released.
func (a *CountingAllocator[T]) Live() int64 {
	return a.counters.live.Load()
}

// Inner returns the wrapped allocator.
func (a *CountingAllocator[T]) Inner() Allocator[T] {
	return a.inner
}

// NewCountingAllocator wraps inner, the heap allocator when inner is nil.
// It propagates on every assignment and on swap unless overridden.
func NewCountingAllocator[T any](inner Allocator[T], opts ...Option) *CountingAllocator[T] {
	if inner == nil {
		inner = NewHeapAllocator[T]()
	}
	o := applyOptions(opts...)
	a := &CountingAllocator[T]{
		inner:    inner,
		counters: &allocCounters{},
		policy:   o.policyOrDefault(PropagateAll),
	}
	if len(o.statsName) > 0 {
		a.stats = newAllocatorStats(o.statsName)
	}
	return a
}
