package tree

import (
	"errors"
	"iter"

	"github.com/benz9527/xtree/lib/alloc"
	"github.com/benz9527/xtree/lib/infra"
)

var (
	ErrRBTreeKeyNotFound        = errors.New("[rbtree] key not found")
	ErrRBTreeAllocatorMismatch  = errors.New("[rbtree] unequal allocators without swap propagation")
	ErrRBTreeRedViolation       = errors.New("[rbtree] red violation")
	ErrRBTreeBlackViolation     = errors.New("[rbtree] black violation")
	ErrRBTreeOrderViolation     = errors.New("[rbtree] order violation")
	ErrRBTreeSentinelViolation  = errors.New("[rbtree] sentinel violation")
	ErrRBTreeSizeViolation      = errors.New("[rbtree] size violation")
	errRBTreeAllocatorNilObject = errors.New("[rbtree] allocator returns nil node")
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "Unknown"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

type Pair[K any, V any] struct {
	Key K
	Val V
}

// RBTree is an ordered map with unique keys.
//
// A tree is not synchronized. Different trees share no state and can be
// used by different goroutines.
type RBTree[K any, V any] interface {
	Len() int64
	Empty() bool
	MaxSize() int64
	Root() *Node[K, V]

	// At returns the value of key or ErrRBTreeKeyNotFound.
	At(key K) (*V, error)
	// Index returns the value of key, inserting the zero value if absent.
	Index(key K) (*V, error)
	// Insert never replaces an existing value. The boolean reports whether
	// a new entry was created.
	Insert(key K, val V) (Iterator[K, V], bool, error)
	InsertOrAssign(key K, val V) (Iterator[K, V], bool, error)
	// InsertRange inserts all pairs or none of them. Later duplicates are ignored.
	InsertRange(pairs ...Pair[K, V]) error
	Erase(key K) bool
	// EraseIter returns the iterator following the erased entry.
	EraseIter(it Iterator[K, V]) Iterator[K, V]
	Find(key K) Iterator[K, V]
	Clear()
	Release()

	Begin() Iterator[K, V]
	End() Iterator[K, V]
	RBegin() Iterator[K, V]
	All() iter.Seq2[K, V]
	Backward() iter.Seq2[K, V]
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Entries() []Pair[K, V]
	Keys() []K
	Values() []V

	Comparator() infra.KeyComparator[K]
	Allocator() alloc.Allocator[Node[K, V]]

	Clone() (RBTree[K, V], error)
	CloneWithAllocator(a alloc.Allocator[Node[K, V]]) (RBTree[K, V], error)
	Move() RBTree[K, V]
	MoveWithAllocator(a alloc.Allocator[Node[K, V]]) (RBTree[K, V], error)
	CopyFrom(other RBTree[K, V]) error
	MoveFrom(other RBTree[K, V]) error
	Swap(other RBTree[K, V]) error

	Dot(name string) string

	impl() *rbTree[K, V]
}
