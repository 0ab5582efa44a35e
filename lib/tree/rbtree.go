package tree

import (
	"math"
	"unsafe"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/alloc"
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/xlog"
)

var _ RBTree[int, struct{}] = (*rbTree[int, struct{}])(nil)

type rbTree[K any, V any] struct {
	sentinel  *Node[K, V]
	root      *Node[K, V] // sentinel if empty
	count     int64
	cmp       infra.KeyComparator[K]
	allocator alloc.Allocator[Node[K, V]]
	logger    xlog.XLogger
}

func (tree *rbTree[K, V]) impl() *rbTree[K, V] {
	return tree
}

func (tree *rbTree[K, V]) debug(msg string, fields ...zap.Field) {
	if tree.logger == nil {
		return
	}
	tree.logger.Debug(msg, fields...)
}

// emptyLike creates an empty tree sharing the comparator and the logger.
func (tree *rbTree[K, V]) emptyLike(a alloc.Allocator[Node[K, V]]) *rbTree[K, V] {
	s := newSentinel[K, V]()
	return &rbTree[K, V]{
		sentinel:  s,
		root:      s,
		cmp:       tree.cmp,
		allocator: a,
		logger:    tree.logger,
	}
}

// reset forgets the nodes and gives the tree a fresh sentinel.
func (tree *rbTree[K, V]) reset() {
	tree.sentinel = newSentinel[K, V]()
	tree.root = tree.sentinel
	tree.count = 0
}

// steal takes over the nodes of src, src is reset.
func (tree *rbTree[K, V]) steal(src *rbTree[K, V]) {
	tree.sentinel, tree.root, tree.count, tree.cmp = src.sentinel, src.root, src.count, src.cmp
	src.reset()
}

func (tree *rbTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *rbTree[K, V]) Empty() bool {
	return tree.count == 0
}

func (tree *rbTree[K, V]) MaxSize() int64 {
	return math.MaxInt64 / int64(unsafe.Sizeof(Node[K, V]{}))
}

// Root returns nil if the tree is empty.
func (tree *rbTree[K, V]) Root() *Node[K, V] {
	if tree.root.isSentinel() {
		return nil
	}
	return tree.root
}

func (tree *rbTree[K, V]) Comparator() infra.KeyComparator[K] {
	return tree.cmp
}

func (tree *rbTree[K, V]) Allocator() alloc.Allocator[Node[K, V]] {
	return tree.allocator
}

// findNode descends from the root. It returns the node of key, otherwise
// the last visited node as the anchor to link the key, or the sentinel if
// the tree is empty.
func (tree *rbTree[K, V]) findNode(key K) (*Node[K, V], bool) {
	anchor := tree.sentinel
	for aux := tree.root; !aux.isSentinel(); {
		anchor = aux
		res := tree.cmp(key, aux.key)
		if /* equal */ res == 0 {
			return aux, true
		} else /* less */ if res < 0 {
			aux = aux.left
		} else /* greater */ {
			aux = aux.right
		}
	}
	return anchor, false
}

// buildNode obtains a node from the allocator and initializes it before
// any link of the tree is touched.
func (tree *rbTree[K, V]) buildNode(key K, val V) (*Node[K, V], error) {
	node, err := tree.allocator.Allocate(1)
	if err == nil && node == nil {
		err = errRBTreeAllocatorNilObject
	}
	if err != nil {
		tree.debug("[rbtree] allocate node failed", zap.Error(err), zap.Int64("len", tree.count))
		return nil, infra.WrapErrorStackWithMessage(err, "[rbtree] allocate node")
	}
	node.parent, node.left, node.right = tree.sentinel, tree.sentinel, tree.sentinel
	node.key, node.val = key, val
	node.color = Red
	return node, nil
}

func (tree *rbTree[K, V]) destroyNode(node *Node[K, V]) {
	*node = Node[K, V]{}
	tree.allocator.Deallocate(node, 1)
}

// linkNode attaches the red node z under the anchor returned by findNode.
func (tree *rbTree[K, V]) linkNode(anchor, z *Node[K, V]) {
	z.parent = anchor
	if anchor.isSentinel() {
		tree.root = z
	} else if tree.cmp(z.key, anchor.key) < 0 {
		anchor.left = z
	} else {
		anchor.right = z
	}
	tree.count++
	tree.insertFixup(z)
}

func (tree *rbTree[K, V]) emplace(key K, val V) (*Node[K, V], bool, error) {
	anchor, found := tree.findNode(key)
	if found {
		return anchor, false, nil
	}
	z, err := tree.buildNode(key, val)
	if err != nil {
		return nil, false, err
	}
	tree.linkNode(anchor, z)
	return z, true, nil
}

func (tree *rbTree[K, V]) eraseNode(z *Node[K, V]) {
	tree.extractNode(z)
	tree.count--
	tree.destroyNode(z)
}

func (tree *rbTree[K, V]) At(key K) (*V, error) {
	node, found := tree.findNode(key)
	if !found {
		return nil, infra.WrapErrorStack(ErrRBTreeKeyNotFound)
	}
	return &node.val, nil
}

func (tree *rbTree[K, V]) Index(key K) (*V, error) {
	var zero V
	node, _, err := tree.emplace(key, zero)
	if err != nil {
		return nil, err
	}
	return &node.val, nil
}

func (tree *rbTree[K, V]) Insert(key K, val V) (Iterator[K, V], bool, error) {
	node, inserted, err := tree.emplace(key, val)
	if err != nil {
		return tree.End(), false, err
	}
	return Iterator[K, V]{node: node, tree: tree}, inserted, nil
}

func (tree *rbTree[K, V]) InsertOrAssign(key K, val V) (Iterator[K, V], bool, error) {
	node, inserted, err := tree.emplace(key, val)
	if err != nil {
		return tree.End(), false, err
	}
	if !inserted {
		node.val = val
	}
	return Iterator[K, V]{node: node, tree: tree}, inserted, nil
}

func (tree *rbTree[K, V]) InsertRange(pairs ...Pair[K, V]) error {
	inserted := make([]*Node[K, V], 0, len(pairs))
	for i := range pairs {
		node, ok, err := tree.emplace(pairs[i].Key, pairs[i].Val)
		if err != nil {
			// Roll back, the range is inserted entirely or not at all.
			for j := len(inserted) - 1; j >= 0; j-- {
				tree.eraseNode(inserted[j])
			}
			return err
		}
		if ok {
			inserted = append(inserted, node)
		}
	}
	return nil
}

func (tree *rbTree[K, V]) Erase(key K) bool {
	node, found := tree.findNode(key)
	if !found {
		return false
	}
	tree.eraseNode(node)
	return true
}

// EraseIter erases the entry of it and returns the next iterator. The end
// iterator and iterators of other trees are ignored.
func (tree *rbTree[K, V]) EraseIter(it Iterator[K, V]) Iterator[K, V] {
	if it.node.isSentinel() || !tree.owns(it.node) {
		return tree.End()
	}
	next := it.node.succ()
	tree.eraseNode(it.node)
	return Iterator[K, V]{node: next, tree: tree}
}

// owns climbs from node to the root and checks the root hangs under the
// sentinel of the tree. Released nodes are zeroed and never owned.
func (tree *rbTree[K, V]) owns(node *Node[K, V]) bool {
	aux := node
	for !aux.parent.isSentinel() {
		aux = aux.parent
	}
	return aux.parent == tree.sentinel
}

func (tree *rbTree[K, V]) Find(key K) Iterator[K, V] {
	node, found := tree.findNode(key)
	if !found {
		return tree.End()
	}
	return Iterator[K, V]{node: node, tree: tree}
}

// Clear releases the nodes in post-order. A leaf is unlinked from its
// parent before it is returned to the allocator, so no stack is needed.
func (tree *rbTree[K, V]) Clear() {
	for aux := tree.root; !aux.isSentinel(); {
		if !aux.left.isSentinel() {
			aux = aux.left
			continue
		}
		if !aux.right.isSentinel() {
			aux = aux.right
			continue
		}
		p := aux.parent
		if !p.isSentinel() {
			if p.left == aux {
				p.left = tree.sentinel
			} else {
				p.right = tree.sentinel
			}
		}
		tree.destroyNode(aux)
		aux = p
	}
	tree.root = tree.sentinel
	tree.sentinel.parent = tree.sentinel
	tree.count = 0
}

// Release returns all nodes to the allocator. The tree stays usable.
func (tree *rbTree[K, V]) Release() {
	tree.Clear()
}

// Inorder traversal.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	idx := int64(0)
	for aux := tree.root.minimum(); !aux.isSentinel(); aux = aux.succ() {
		if !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
	}
}

func (tree *rbTree[K, V]) Entries() []Pair[K, V] {
	pairs := make([]Pair[K, V], 0, tree.count)
	for aux := tree.root.minimum(); !aux.isSentinel(); aux = aux.succ() {
		pairs = append(pairs, Pair[K, V]{Key: aux.key, Val: aux.val})
	}
	return pairs
}

func (tree *rbTree[K, V]) Clone() (RBTree[K, V], error) {
	return tree.CloneWithAllocator(alloc.SelectOnCopy(tree.allocator))
}

func (tree *rbTree[K, V]) CloneWithAllocator(a alloc.Allocator[Node[K, V]]) (RBTree[K, V], error) {
	dst, err := tree.cloneInto(a)
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// cloneInto inserts every entry into a new tree allocating from a.
// Nothing leaks if the allocator fails.
func (tree *rbTree[K, V]) cloneInto(a alloc.Allocator[Node[K, V]]) (*rbTree[K, V], error) {
	if a == nil {
		a = alloc.NewHeapAllocator[Node[K, V]]()
	}
	dst := tree.emptyLike(a)
	for aux := tree.root.minimum(); !aux.isSentinel(); aux = aux.succ() {
		if _, _, err := dst.emplace(aux.key, aux.val); err != nil {
			dst.Clear()
			return nil, err
		}
	}
	return dst, nil
}

// Move transfers the nodes into a new tree without allocation. The
// receiver is left empty with a fresh sentinel.
func (tree *rbTree[K, V]) Move() RBTree[K, V] {
	dst := tree.emptyLike(tree.allocator)
	dst.steal(tree)
	return dst
}

// MoveWithAllocator transfers the nodes if a equals the allocator of the
// receiver. Otherwise, the entries are inserted into nodes allocated from a
// and the receiver releases its own nodes.
func (tree *rbTree[K, V]) MoveWithAllocator(a alloc.Allocator[Node[K, V]]) (RBTree[K, V], error) {
	if a == nil || a.Equal(tree.allocator) {
		dst := tree.Move().impl()
		if a != nil {
			dst.allocator = a
		}
		return dst, nil
	}
	tree.debug("[rbtree] move with unequal allocator, fallback to insert elements",
		zap.Int64("len", tree.count),
	)
	dst, err := tree.cloneInto(a)
	if err != nil {
		return nil, err
	}
	tree.Clear()
	return dst, nil
}

// CopyFrom replaces the entries and the comparator with the ones of other.
// The allocator of other is taken if it propagates on copy assignment.
// The copy is built aside first, the receiver is unchanged on failure.
func (tree *rbTree[K, V]) CopyFrom(other RBTree[K, V]) error {
	src := other.impl()
	if src == tree {
		return nil
	}
	a := tree.allocator
	if src.allocator.Policy().Has(alloc.PropagateOnCopyAssign) {
		a = src.allocator
	}
	scratch, err := src.cloneInto(a)
	if err != nil {
		return err
	}
	tree.Clear()
	tree.allocator = a
	tree.steal(scratch)
	return nil
}

// MoveFrom replaces the entries and the comparator with the ones of other,
// leaving other empty. The nodes are taken over if the allocator of other
// propagates on move assignment or both allocators are equal. Otherwise,
// the entries are inserted into nodes of the receiver's allocator.
func (tree *rbTree[K, V]) MoveFrom(other RBTree[K, V]) error {
	src := other.impl()
	if src == tree {
		return nil
	}
	if src.allocator.Policy().Has(alloc.PropagateOnMoveAssign) {
		tree.Clear()
		tree.allocator = src.allocator
		tree.steal(src)
		return nil
	}
	if tree.allocator.Equal(src.allocator) {
		tree.Clear()
		tree.steal(src)
		return nil
	}

	tree.debug("[rbtree] move assign with unequal allocator, fallback to insert elements",
		zap.Int64("len", src.count),
	)
	scratch, err := src.cloneInto(tree.allocator)
	if err != nil {
		return err
	}
	tree.Clear()
	tree.steal(scratch)
	src.Clear()
	return nil
}

// Swap exchanges the entries and comparators in O(1). The allocators are
// exchanged if both propagate on swap, otherwise they have to be equal.
func (tree *rbTree[K, V]) Swap(other RBTree[K, V]) error {
	o := other.impl()
	if o == tree {
		return nil
	}
	propagate := tree.allocator.Policy().Has(alloc.PropagateOnSwap) &&
		o.allocator.Policy().Has(alloc.PropagateOnSwap)
	if !propagate && !tree.allocator.Equal(o.allocator) {
		tree.debug("[rbtree] swap rejected",
			zap.Stringer("policy", tree.allocator.Policy()),
			zap.Stringer("otherPolicy", o.allocator.Policy()),
		)
		return infra.WrapErrorStack(ErrRBTreeAllocatorMismatch)
	}
	tree.sentinel, o.sentinel = o.sentinel, tree.sentinel
	tree.root, o.root = o.root, tree.root
	tree.count, o.count = o.count, tree.count
	tree.cmp, o.cmp = o.cmp, tree.cmp
	if propagate {
		tree.allocator, o.allocator = o.allocator, tree.allocator
	}
	return nil
}

// Equal reports whether both trees share equal allocators and hold equal
// entries in the same order.
func Equal[K any, V comparable](lhs, rhs RBTree[K, V]) bool {
	return EqualFunc(lhs, rhs, func(a, b V) bool {
		return a == b
	})
}

// EqualFunc is like Equal but compares the values with eq. The keys are
// compared by the comparator of lhs.
func EqualFunc[K any, V any](lhs, rhs RBTree[K, V], eq func(a, b V) bool) bool {
	l, r := lhs.impl(), rhs.impl()
	if l == r {
		return true
	}
	if !l.allocator.Equal(r.allocator) || l.count != r.count {
		return false
	}
	for x, y := l.root.minimum(), r.root.minimum(); !x.isSentinel() && !y.isSentinel(); x, y = x.succ(), y.succ() {
		if l.cmp(x.key, y.key) != 0 || !eq(x.val, y.val) {
			return false
		}
	}
	return true
}

type RBTreeOpt[K any, V any] func(*rbTree[K, V])

// WithRBTreeDesc orders the keys from the greatest to the least.
func WithRBTreeDesc[K infra.OrderedKey, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.cmp = infra.DescComparator[K]()
	}
}

func WithRBTreeAllocator[K any, V any](a alloc.Allocator[Node[K, V]]) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		if a != nil {
			tree.allocator = a
		}
	}
}

func WithRBTreeLogger[K any, V any](logger xlog.XLogger) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.logger = logger
	}
}

// New creates an empty tree of ordered keys in ascending order, allocating
// the nodes from the Go heap by default.
func New[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	return NewFunc[K, V](infra.AscComparator[K](), opts...)
}

// NewFunc creates an empty tree ordered by cmp.
func NewFunc[K any, V any](cmp infra.KeyComparator[K], opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	if cmp == nil {
		panic("[rbtree] nil key comparator")
	}
	s := newSentinel[K, V]()
	tree := &rbTree[K, V]{
		sentinel: s,
		root:     s,
		cmp:      cmp,
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	if tree.allocator == nil {
		tree.allocator = alloc.NewHeapAllocator[Node[K, V]]()
	}
	return tree
}

// NewFrom creates a tree by inserting the pairs in order. Later duplicates
// are ignored.
func NewFrom[K infra.OrderedKey, V any](pairs []Pair[K, V], opts ...RBTreeOpt[K, V]) (RBTree[K, V], error) {
	return NewFuncFrom[K, V](infra.AscComparator[K](), pairs, opts...)
}

func NewFuncFrom[K any, V any](cmp infra.KeyComparator[K], pairs []Pair[K, V], opts ...RBTreeOpt[K, V]) (RBTree[K, V], error) {
	tree := NewFunc[K, V](cmp, opts...)
	if err := tree.InsertRange(pairs...); err != nil {
		return nil, err
	}
	return tree, nil
}
