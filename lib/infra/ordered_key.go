package infra

import (
	"cmp"
)

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// KeyComparator
// Assume i is the new key.
//  1. i == j (return 0)
//  2. i > j (return 1), turn to right part.
//  3. i < j (return -1), turn to left part.
//
// A comparator must be a strict weak order over K and must not change
// its behavior once a container has been built with it.
type KeyComparator[K any] func(i, j K) int64

// AscComparator orders the keys ascending. NaN is less than any other
// float and equal to itself, so float keys stay a strict weak order.
func AscComparator[K OrderedKey]() KeyComparator[K] {
	return func(i, j K) int64 {
		return int64(cmp.Compare(i, j))
	}
}

func DescComparator[K OrderedKey]() KeyComparator[K] {
	return func(i, j K) int64 {
		return int64(cmp.Compare(j, i))
	}
}

// LessComparator turns a strict weak order predicate into a three-way
// comparator. Keys neither less nor greater than each other are equivalent.
func LessComparator[K any](less func(a, b K) bool) KeyComparator[K] {
	return func(i, j K) int64 {
		if less(i, j) {
			return -1
		} else if less(j, i) {
			return 1
		}
		return 0
	}
}
