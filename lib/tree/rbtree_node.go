package tree

// Node is an entry of the tree. The key is immutable once linked, the
// value can be updated in place through ValPtr.
//
// Each tree owns a sentinel node. The sentinel is black, its left and right
// point to itself, and it stands for both the empty subtree and the parent
// of the root.
type Node[K any, V any] struct {
	parent *Node[K, V]
	left   *Node[K, V]
	right  *Node[K, V]
	key    K
	val    V
	color  RBColor
}

func newSentinel[K any, V any]() *Node[K, V] {
	s := &Node[K, V]{color: Black}
	s.parent, s.left, s.right = s, s, s
	return s
}

func (node *Node[K, V]) Key() K {
	return node.key
}

func (node *Node[K, V]) Val() V {
	return node.val
}

func (node *Node[K, V]) ValPtr() *V {
	return &node.val
}

func (node *Node[K, V]) Color() RBColor {
	return node.color
}

// Left returns nil instead of the sentinel.
func (node *Node[K, V]) Left() *Node[K, V] {
	if node == nil || node.left.isSentinel() {
		return nil
	}
	return node.left
}

// Right returns nil instead of the sentinel.
func (node *Node[K, V]) Right() *Node[K, V] {
	if node == nil || node.right.isSentinel() {
		return nil
	}
	return node.right
}

// Parent returns nil for the root.
func (node *Node[K, V]) Parent() *Node[K, V] {
	if node == nil || node.parent.isSentinel() {
		return nil
	}
	return node.parent
}

func (node *Node[K, V]) isSentinel() bool {
	return node == nil || node.left == node
}

func (node *Node[K, V]) isRed() bool {
	return node.color == Red
}

func (node *Node[K, V]) isBlack() bool {
	return node.color == Black
}

func (node *Node[K, V]) isRoot() bool {
	return node.parent.isSentinel()
}

func (node *Node[K, V]) direction() RBDirection {
	if node.isSentinel() {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] sentinel node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *Node[K, V]) sibling() *Node[K, V] {
	switch node.direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *Node[K, V]) uncle() *Node[K, V] {
	return node.parent.sibling()
}

func (node *Node[K, V]) grandpa() *Node[K, V] {
	return node.parent.parent
}

func (node *Node[K, V]) minimum() *Node[K, V] {
	aux := node
	for ; !aux.isSentinel() && !aux.left.isSentinel(); aux = aux.left {
	}
	return aux
}

func (node *Node[K, V]) maximum() *Node[K, V] {
	aux := node
	for ; !aux.isSentinel() && !aux.right.isSentinel(); aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
// The pred of the minimum is the sentinel.
func (node *Node[K, V]) pred() *Node[K, V] {
	x := node
	if !x.left.isSentinel() {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for !aux.isSentinel() && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
// The succ of the maximum is the sentinel.
func (node *Node[K, V]) succ() *Node[K, V] {
	x := node
	if !x.right.isSentinel() {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for !aux.isSentinel() && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}
