package alloc

var _ Allocator[struct{}] = heapAllocator[struct{}]{}

// heapAllocator allocates from the Go heap. It is stateless, so every
// instance is equal to every other one.
type heapAllocator[T any] struct {
	policy PropagationPolicy
}

func (heapAllocator[T]) Allocate(n int) (*T, error) {
	if n <= 0 {
		return nil, ErrAllocatorInvalidSize
	}
	if n == 1 {
		return new(T), nil
	}
	objs := make([]T, n)
	return &objs[0], nil
}

// Deallocate leaves the storage to the garbage collector.
func (heapAllocator[T]) Deallocate(*T, int) {}

func (heapAllocator[T]) Equal(other Allocator[T]) bool {
	_, ok := other.(heapAllocator[T])
	return ok
}

func (a heapAllocator[T]) Policy() PropagationPolicy {
	return a.policy
}

// NewHeapAllocator returns the default allocator. It propagates on move
// assignment only.
func NewHeapAllocator[T any](opts ...Option) Allocator[T] {
	o := applyOptions(opts...)
	return heapAllocator[T]{
		policy: o.policyOrDefault(PropagateOnMoveAssign),
	}
}
