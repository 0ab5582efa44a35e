package tree

import (
	"iter"

	"github.com/samber/lo"
)

// Iterator is a bidirectional cursor over the entries of a tree. The end
// iterator points to the sentinel. An iterator stays valid until its own
// entry is erased.
//
// The sentinel and the nodes travel together on Move, MoveFrom and Swap,
// so an iterator follows its entry into the tree now holding it: walking
// it reaches the End of that tree, and that tree's EraseIter accepts it.
// Only Prev of an end iterator taken before the transfer cannot find the
// maximum any more, it returns the iterator unchanged.
type Iterator[K any, V any] struct {
	node *Node[K, V]
	tree *rbTree[K, V]
}

func (it Iterator[K, V]) Valid() bool {
	return !it.node.isSentinel()
}

func (it Iterator[K, V]) Key() K {
	return it.node.key
}

func (it Iterator[K, V]) Val() V {
	return it.node.val
}

func (it Iterator[K, V]) ValPtr() *V {
	return &it.node.val
}

func (it Iterator[K, V]) Color() RBColor {
	return it.node.color
}

// Next of the end iterator is the end iterator.
func (it Iterator[K, V]) Next() Iterator[K, V] {
	if !it.Valid() {
		return it
	}
	return Iterator[K, V]{node: it.node.succ(), tree: it.tree}
}

// Prev of the end iterator points to the maximum, Prev of the minimum is
// the end iterator.
func (it Iterator[K, V]) Prev() Iterator[K, V] {
	if it.node == nil {
		return it
	}
	if it.node.isSentinel() {
		if it.tree == nil || it.tree.sentinel != it.node {
			return it
		}
		return Iterator[K, V]{node: it.tree.root.maximum(), tree: it.tree}
	}
	return Iterator[K, V]{node: it.node.pred(), tree: it.tree}
}

// Equal compares the positions. The end iterators of a tree are equal
// because the sentinel belongs to the nodes, not to the tree value.
func (it Iterator[K, V]) Equal(other Iterator[K, V]) bool {
	return it.node == other.node
}

func (tree *rbTree[K, V]) Begin() Iterator[K, V] {
	return Iterator[K, V]{node: tree.root.minimum(), tree: tree}
}

func (tree *rbTree[K, V]) End() Iterator[K, V] {
	return Iterator[K, V]{node: tree.sentinel, tree: tree}
}

// RBegin points to the maximum, it is the end iterator if the tree is empty.
func (tree *rbTree[K, V]) RBegin() Iterator[K, V] {
	return Iterator[K, V]{node: tree.root.maximum(), tree: tree}
}

func (tree *rbTree[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for aux := tree.root.minimum(); !aux.isSentinel(); aux = aux.succ() {
			if !yield(aux.key, aux.val) {
				return
			}
		}
	}
}

func (tree *rbTree[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for aux := tree.root.maximum(); !aux.isSentinel(); aux = aux.pred() {
			if !yield(aux.key, aux.val) {
				return
			}
		}
	}
}

func (tree *rbTree[K, V]) Keys() []K {
	return lo.Map(tree.Entries(), func(p Pair[K, V], _ int) K {
		return p.Key
	})
}

func (tree *rbTree[K, V]) Values() []V {
	return lo.Map(tree.Entries(), func(p Pair[K, V], _ int) V {
		return p.Val
	})
}
