package alloc

import (
	"unsafe"
)

var _ Allocator[struct{}] = (*ArenaAllocator[struct{}])(nil)

const DefaultArenaChunkCap = 256

// ArenaAllocator carves objects out of typed chunks. Chunks only grow, the
// released objects are recycled for later single-object requests.
// The arena is not synchronized, it belongs to one container or to
// containers serialized by the caller.
type ArenaAllocator[T any] struct {
	chunks     [][]T
	recycled   []*T
	offset     int // next free slot in the last chunk
	chunkCap   int
	live       int
	maxObjects int
	policy     PropagationPolicy
}

func (arena *ArenaAllocator[T]) Allocate(n int) (*T, error) {
	if n <= 0 {
		return nil, ErrAllocatorInvalidSize
	}
	if arena.maxObjects > 0 && arena.live+n > arena.maxObjects {
		return nil, ErrAllocatorExhausted
	}

	if rl := len(arena.recycled); n == 1 && rl > 0 {
		obj := arena.recycled[rl-1]
		arena.recycled[rl-1] = nil
		arena.recycled = arena.recycled[:rl-1]
		arena.live++
		return obj, nil
	}

	last := len(arena.chunks) - 1
	if last < 0 || arena.offset+n > len(arena.chunks[last]) {
		// double size increase, bounded by the configured chunk cap
		size := arena.chunkCap
		if last >= 0 {
			size = min(2*len(arena.chunks[last]), 64*arena.chunkCap)
		}
		arena.chunks = append(arena.chunks, make([]T, max(size, n)))
		arena.offset = 0
		last++
	}
	obj := &arena.chunks[last][arena.offset]
	arena.offset += n
	arena.live += n
	return obj, nil
}

func (arena *ArenaAllocator[T]) Deallocate(ptr *T, n int) {
	if ptr == nil || n <= 0 {
		return
	}
	var zero T
	objs := unsafe.Slice(ptr, n)
	for i := range objs {
		objs[i] = zero
		arena.recycled = append(arena.recycled, &objs[i])
	}
	arena.live -= n
}

func (arena *ArenaAllocator[T]) Equal(other Allocator[T]) bool {
	o, ok := other.(*ArenaAllocator[T])
	return ok && o == arena
}

func (arena *ArenaAllocator[T]) Policy() PropagationPolicy {
	return arena.policy
}

// Chunks returns the number of chunks allocated so far.
func (arena *ArenaAllocator[T]) Chunks() int {
	return len(arena.chunks)
}

// Live returns the number of objects handed out and not yet released.
func (arena *ArenaAllocator[T]) Live() int {
	return arena.live
}

// Recycled returns the number of released objects waiting for reuse.
func (arena *ArenaAllocator[T]) Recycled() int {
	return len(arena.recycled)
}

// NewArenaAllocator creates an arena whose first chunk holds chunkCap
// objects. It propagates on every assignment and on swap, since storage
// must return to the arena it came from.
func NewArenaAllocator[T any](chunkCap int, opts ...Option) *ArenaAllocator[T] {
	if chunkCap <= 0 {
		chunkCap = DefaultArenaChunkCap
	}
	o := applyOptions(opts...)
	return &ArenaAllocator[T]{
		chunks:     make([][]T, 0, 8),
		recycled:   make([]*T, 0, chunkCap),
		chunkCap:   chunkCap,
		maxObjects: o.maxObjects,
		policy:     o.policyOrDefault(PropagateAll),
	}
}
