package alloc

import (
	"errors"
)

var (
	ErrAllocatorExhausted   = errors.New("[alloc] allocator exhausted")
	ErrAllocatorInvalidSize = errors.New("[alloc] invalid allocation size")
)

// PropagationPolicy tells a container whether its allocator follows the
// elements when the container is copy-assigned, move-assigned or swapped.
type PropagationPolicy uint8

const (
	PropagateOnCopyAssign PropagationPolicy = 1 << iota
	PropagateOnMoveAssign
	PropagateOnSwap

	PropagateNone PropagationPolicy = 0
	PropagateAll                    = PropagateOnCopyAssign | PropagateOnMoveAssign | PropagateOnSwap
)

func (p PropagationPolicy) Has(flags PropagationPolicy) bool {
	return p&flags == flags
}

func (p PropagationPolicy) String() string {
	if p == PropagateNone {
		return "none"
	}
	s := ""
	for _, f := range []struct {
		flag PropagationPolicy
		name string
	}{
		{PropagateOnCopyAssign, "copy"},
		{PropagateOnMoveAssign, "move"},
		{PropagateOnSwap, "swap"},
	} {
		if p.Has(f.flag) {
			if len(s) > 0 {
				s += "|"
			}
			s += f.name
		}
	}
	return s
}

// Allocator hands out raw object storage to a container.
//
// Allocate returns storage for n contiguous objects of T. The storage is
// zeroed, the container constructs the object in place. Deallocate returns
// the storage obtained by a previous Allocate with the same n, after the
// container has destroyed the objects.
//
// Two allocators are equal when storage allocated by one can be released
// through the other.
type Allocator[T any] interface {
	Allocate(n int) (*T, error)
	Deallocate(ptr *T, n int)
	Equal(other Allocator[T]) bool
	Policy() PropagationPolicy
}

// CopySelector is implemented by allocators which want to choose the
// allocator of a copy constructed container.
type CopySelector[T any] interface {
	SelectOnCopy() Allocator[T]
}

// SelectOnCopy returns the allocator a copy of a container owning a
// should use. Without a CopySelector the copy shares a.
func SelectOnCopy[T any](a Allocator[T]) Allocator[T] {
	if sel, ok := a.(CopySelector[T]); ok {
		return sel.SelectOnCopy()
	}
	return a
}
