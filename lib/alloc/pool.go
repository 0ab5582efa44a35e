package alloc

import (
	"sync"
)

var _ Allocator[struct{}] = (*PoolAllocator[struct{}])(nil)

const DefaultPoolCapacity = 64

// PoolAllocator keeps a bounded free list of released single objects and
// hands them out again before falling back to the heap. Multi-object
// requests always go to the heap.
// A pool may be shared by containers living in different goroutines.
type PoolAllocator[T any] struct {
	lock       sync.Mutex
	freelist   []*T
	live       int
	maxObjects int
	policy     PropagationPolicy
}

func (p *PoolAllocator[T]) Allocate(n int) (*T, error) {
	if n <= 0 {
		return nil, ErrAllocatorInvalidSize
	}
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.maxObjects > 0 && p.live+n > p.maxObjects {
		return nil, ErrAllocatorExhausted
	}
	p.live += n
	if n > 1 {
		objs := make([]T, n)
		return &objs[0], nil
	}
	idx := len(p.freelist) - 1
	if idx < 0 {
		return new(T), nil
	}
	obj := p.freelist[idx]
	p.freelist[idx] = nil
	p.freelist = p.freelist[:idx]
	return obj, nil
}

func (p *PoolAllocator[T]) Deallocate(ptr *T, n int) {
	if ptr == nil || n <= 0 {
		return
	}
	p.lock.Lock()
	defer p.lock.Unlock()

	p.live -= n
	if n > 1 || len(p.freelist) >= cap(p.freelist) {
		return
	}
	var zero T
	*ptr = zero
	p.freelist = append(p.freelist, ptr)
}

func (p *PoolAllocator[T]) Equal(other Allocator[T]) bool {
	o, ok := other.(*PoolAllocator[T])
	return ok && o == p
}

func (p *PoolAllocator[T]) Policy() PropagationPolicy {
	return p.policy
}

// Free returns the number of objects waiting in the free list.
func (p *PoolAllocator[T]) Free() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.freelist)
}

// Live returns the number of objects handed out and not yet released.
func (p *PoolAllocator[T]) Live() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.live
}

// NewPoolAllocator creates a pool remembering at most capacity released
// objects. It propagates on swap and move assignment.
func NewPoolAllocator[T any](capacity int, opts ...Option) *PoolAllocator[T] {
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}
	o := applyOptions(opts...)
	return &PoolAllocator[T]{
		freelist:   make([]*T, 0, capacity),
		maxObjects: o.maxObjects,
		policy:     o.policyOrDefault(PropagateOnMoveAssign | PropagateOnSwap),
	}
}
