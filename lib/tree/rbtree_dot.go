package tree

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/samber/lo"
)

// WriteDot writes the tree as a Graphviz digraph. The nodes are visited in
// BFS order and named n0, n1, ... in that order. Each node is labeled with
// its key and its value, and colored by its color.
func WriteDot[K any, V any](w io.Writer, tree RBTree[K, V], name string) error {
	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintf(bw, "digraph %q {\n", name)

	t := tree.impl()
	if !t.root.isSentinel() {
		ids := make(map[*Node[K, V]]int, t.count)
		queue := make([]*Node[K, V], 0, t.count)
		queue = append(queue, t.root)
		ids[t.root] = 0
		for len(queue) > 0 {
			aux := queue[0]
			queue = queue[1:]
			_, _ = fmt.Fprintf(bw, "    n%d [color=%s label=<%s<BR/><FONT POINT-SIZE=\"10\">%s</FONT>>];\n",
				ids[aux],
				lo.Ternary(aux.isRed(), "red", "black"),
				html.EscapeString(fmt.Sprint(aux.key)),
				html.EscapeString(fmt.Sprint(aux.val)),
			)
			for _, child := range []*Node[K, V]{aux.left, aux.right} {
				if child.isSentinel() {
					continue
				}
				ids[child] = len(ids)
				queue = append(queue, child)
				_, _ = fmt.Fprintf(bw, "    n%d -> n%d;\n", ids[aux], ids[child])
			}
		}
	}
	_, _ = bw.WriteString("}\n")
	return bw.Flush()
}

func (tree *rbTree[K, V]) Dot(name string) string {
	var sb strings.Builder
	_ = WriteDot[K, V](&sb, tree, name)
	return sb.String()
}
