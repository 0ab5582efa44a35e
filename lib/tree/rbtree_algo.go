package tree

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. The sentinel is considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   sentinel goes through the same number of black nodes. (black-violation)
// p5. The root is black and its parent is the sentinel.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its sentinel descendants would sit at a
//   different black depth than X's sentinel child, violating p4.
// The longest path nodes' number is 2 * shortest path nodes' number.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc

Sc may be the sentinel, its parent is never written.
*/
func (tree *rbTree[K, V]) leftRotate(x *Node[K, V]) {
	if x.isSentinel() || x.right.isSentinel() {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is sentinel or x.right is sentinel")
	}

	p, y := x.parent, x.right
	dir := x.direction()
	x.right, y.left = y.left, x
	if !x.right.isSentinel() {
		x.right.parent = x
	}
	x.parent = y

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
	}
	y.parent = p
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K, V]) rightRotate(x *Node[K, V]) {
	if x.isSentinel() || x.left.isSentinel() {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is sentinel or x.left is sentinel")
	}

	p, y := x.parent, x.left
	dir := x.direction()
	x.left, y.right = y.right, x
	if !x.left.isSentinel() {
		x.left.parent = x
	}
	x.parent = y

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
	}
	y.parent = p
}

func (tree *rbTree[K, V]) rotate(x *Node[K, V], dir RBDirection) {
	switch dir {
	case Left:
		tree.leftRotate(x)
	case Right:
		tree.rightRotate(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown rotate direction")
	}
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or sentinel).
{X} is either a RED node or a BLACK node.

im1: Current node X's parent P is black, nothing to fix.

im2: X is the root, it is repainted into black at the end.

im3: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Climb to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to opposite direction.
After rotation it is still red-violation. Here must enter im5 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im5: Handle im4 scenario, current node is the same direction as parent.
Stop after repainted.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[K, V]) insertFixup(x *Node[K, V]) {
	for /* im1 */ x.parent.isRed() {
		// A red parent is never the root, grandpa exists.
		p, gp, u := x.parent, x.grandpa(), x.uncle()
		if /* im3 */ u.isRed() {
			p.color, u.color, gp.color = Black, Black, Red
			x = gp
			continue
		}

		dir, pDir := x.direction(), p.direction()
		if /* im4 */ dir != pDir {
			// Left child rotates right, right child rotates left.
			tree.rotate(p, -dir)
			x, p = p, x
		}

		/* im5 */
		p.color, gp.color = Black, Red
		tree.rotate(gp, -pDir)
	}
	/* im2 */
	tree.root.color = Black
}

// transplant links v into the position of u. The parent of v is written
// even if v is the sentinel.
func (tree *rbTree[K, V]) transplant(u, v *Node[K, V]) {
	switch u.direction() {
	case Root:
		tree.root = v
	case Left:
		u.parent.left = v
	case Right:
		u.parent.right = v
	default:
	}
	v.parent = u.parent
}

/*
r1: Current node Z has no left child. Its right child (maybe the sentinel)
takes its position.

r2: Current node Z has no right child. Its left child takes its position.

r3: Current node Z has left and right child.
The succ S of Z is the minimum of Z's right subtree, so S has no left child.
S is spliced out (its right child takes S's position), then S is relinked
into Z's position and repainted into Z's color. The key and value are never
moved between nodes, so the iterators of S stay valid.

	  |                    |
	  Z                    S
	 / \                  / \
	L  ..   relink(S)    L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..               Sr  ..
	   \
	   Sr

The structurally removed color is Z's color in r1/r2 and S's color in r3.
Removing a black position leaves a black-violation at the node which took
that position, even if the node is the sentinel. The sentinel's parent is
written as scratch to let the fixup climb, it is restored after.
*/
func (tree *rbTree[K, V]) extractNode(z *Node[K, V]) {
	var (
		x       *Node[K, V]
		rmColor = z.color
	)
	if /* r1 */ z.left.isSentinel() {
		x = z.right
		tree.transplant(z, z.right)
	} else if /* r2 */ z.right.isSentinel() {
		x = z.left
		tree.transplant(z, z.left)
	} else /* r3 */ {
		s := z.right.minimum()
		rmColor = s.color
		x = s.right
		if s.parent == z {
			x.parent = s
		} else {
			tree.transplant(s, s.right)
			s.right = z.right
			s.right.parent = s
		}
		tree.transplant(z, s)
		s.left = z.left
		s.left.parent = s
		s.color = z.color
	}

	if rmColor == Black {
		tree.extractFixup(x)
	}
	tree.sentinel.parent = tree.sentinel
	z.parent, z.left, z.right = nil, nil, nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or sentinel).
{X} is either a RED node or a BLACK node.

X carries an extra black.
Sc is the same direction to X and it X's sibling's child node.
Sd is the opposite direction to X and it X's sibling's child node.

rm1: Current node X's sibling S is red, so the parent P, nephew node Sc and Sd
must be black. (Otherwise, red-violation)
(1) X is left node of P, left rotate P.
(2) X is right node of P, right rotate P.
(3) repaint S into black, P into red.
Retry with the new sibling Sc, it is black.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [D]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: The sibling S, nephew node Sc and Sd are black.
Repaint S into red, the extra black moves to P.
If P is red, P is repainted into black and the fixup stops.
Otherwise, climb to handle P.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: Current node X's sibling S is black, nephew node Sc is red and Sd
is black. Ignore X's parent P's color (red or black is okay)
(1) If X is left node of P, right rotate S.
(2) If X is right node of P, left rotate S.
(3) Repaint S into red, Sc into black.
Enter into rm4 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm4: Current node X's sibling S is black, nephew node Sd is red.
Ignore X's parent P's color (red or black is okay).
(1) If X is left node of P, left rotate P.
(2) If X is right node of P, right rotate P.
(3) S takes P's color, P and Sd are repainted into black.
The extra black is absorbed, stop.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	  {Sc} <Sd>         [X] {Sc}           [X] {Sc}

rm5: X is red or X is the root, repaint X into black.
*/
func (tree *rbTree[K, V]) extractFixup(x *Node[K, V]) {
	for x != tree.root && x.isBlack() {
		p := x.parent
		// The sentinel has no direction, it is compared directly.
		dir := Right
		if x == p.left {
			dir = Left
		}

		s := p.child(-dir)
		if /* rm1 */ s.isRed() {
			s.color, p.color = Black, Red
			tree.rotate(p, dir)
			s = p.child(-dir)
		}

		sc, sd := s.child(dir), s.child(-dir)
		if /* rm2 */ sc.isBlack() && sd.isBlack() {
			s.color = Red
			x = p
			continue
		}

		if /* rm3 */ sd.isBlack() {
			sc.color, s.color = Black, Red
			tree.rotate(s, -dir)
			s = p.child(-dir)
			sd = s.child(-dir)
		}

		/* rm4 */
		s.color, p.color, sd.color = p.color, Black, Black
		tree.rotate(p, dir)
		x = tree.root
	}
	/* rm5 */
	x.color = Black
}

func (node *Node[K, V]) child(dir RBDirection) *Node[K, V] {
	if dir == Left {
		return node.left
	}
	return node.right
}
