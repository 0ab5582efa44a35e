package tree

import (
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

func isBlack[K any, V any](node *Node[K, V]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K any, V any](node *Node[K, V]) bool {
	return node != nil && node.Color() == Red
}

func blackDepthTo[K any, V any](target, to *Node[K, V]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.Parent() {
		if isBlack[K, V](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[K any, V any](tree RBTree[K, V]) error {
	size := tree.Len()
	aux := tree.Root()
	if size <= 0 || aux == nil {
		return nil
	}
	if isRed[K, V](aux) {
		return infra.WrapErrorStackWithMessage(ErrRBTreeRedViolation, "red root")
	}

	stack := make([]*Node[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; isRed[K, V](aux) {
			if isRed[K, V](aux.Parent()) || isRed[K, V](aux.Left()) || isRed[K, V](aux.Right()) {
				return infra.WrapErrorStack(ErrRBTreeRedViolation)
			}
		}

		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

// BFS traversal to load all nodes with at least one sentinel child.
func bfsLeaves[K any, V any](tree RBTree[K, V]) []*Node[K, V] {
	size := tree.Len()
	aux := tree.Root()
	if size <= 0 || aux == nil {
		return nil
	}

	leaves := make([]*Node[K, V], 0, size>>1+1)
	queue := make([]*Node[K, V], 0, size>>1+1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.Left(), aux.Right()
		if /* sentinel children, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or sentinel).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K any, V any](tree RBTree[K, V]) error {
	leaves := bfsLeaves[K, V](tree)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[K, V](leaves[0], tree.Root())
	for i := 1; i < len(leaves); i++ {
		if blackDepthTo[K, V](leaves[i], tree.Root()) != blackDepth {
			return infra.WrapErrorStack(ErrRBTreeBlackViolation)
		}
	}
	return nil
}

// OrderViolationValidate checks the keys are strictly increasing under the
// comparator in the inorder traversal, and the parent links are consistent.
func OrderViolationValidate[K any, V any](tree RBTree[K, V]) error {
	t := tree.impl()
	var prev *Node[K, V]
	for aux := t.root.minimum(); !aux.isSentinel(); aux = aux.succ() {
		if prev != nil && t.cmp(prev.key, aux.key) >= 0 {
			return infra.WrapErrorStack(ErrRBTreeOrderViolation)
		}
		if (!aux.left.isSentinel() && aux.left.parent != aux) ||
			(!aux.right.isSentinel() && aux.right.parent != aux) {
			return infra.WrapErrorStackWithMessage(ErrRBTreeOrderViolation, "broken parent link")
		}
		prev = aux
	}
	return nil
}

func SentinelViolationValidate[K any, V any](tree RBTree[K, V]) error {
	t := tree.impl()
	s := t.sentinel
	if s == nil || s.color != Black || s.left != s || s.right != s {
		return infra.WrapErrorStack(ErrRBTreeSentinelViolation)
	}
	if t.root != s && t.root.parent != s {
		return infra.WrapErrorStackWithMessage(ErrRBTreeSentinelViolation, "root parent")
	}
	return nil
}

// SizeViolationValidate counts the reachable nodes by a DFS.
func SizeViolationValidate[K any, V any](tree RBTree[K, V]) error {
	var (
		count int64
		stack = make([]*Node[K, V], 0, 64)
	)
	if root := tree.Root(); root != nil {
		stack = append(stack, root)
	}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		if l := aux.Left(); l != nil {
			stack = append(stack, l)
		}
		if r := aux.Right(); r != nil {
			stack = append(stack, r)
		}
	}
	if count != tree.Len() {
		return infra.WrapErrorStack(ErrRBTreeSizeViolation)
	}
	return nil
}

// Validate combines all violations of the tree.
func Validate[K any, V any](tree RBTree[K, V]) error {
	return multierr.Combine(
		SentinelViolationValidate(tree),
		SizeViolationValidate(tree),
		OrderViolationValidate(tree),
		RedViolationValidate(tree),
		BlackViolationValidate(tree),
	)
}
