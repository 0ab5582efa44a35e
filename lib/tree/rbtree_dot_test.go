package tree

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteDot(t *testing.T) {
	tree := New[int, string]()
	require.Equal(t, "digraph \"empty\" {\n}\n", tree.Dot("empty"))

	for _, p := range []Pair[int, string]{{1, "one"}, {2, "two"}, {3, "<3&>"}} {
		_, _, err := tree.Insert(p.Key, p.Val)
		require.NoError(t, err)
	}
	expected := strings.Join([]string{
		`digraph "rbtree" {`,
		`    n0 [color=black label=<2<BR/><FONT POINT-SIZE="10">two</FONT>>];`,
		`    n0 -> n1;`,
		`    n0 -> n2;`,
		`    n1 [color=red label=<1<BR/><FONT POINT-SIZE="10">one</FONT>>];`,
		`    n2 [color=red label=<3<BR/><FONT POINT-SIZE="10">&lt;3&amp;&gt;</FONT>>];`,
		`}`,
		``,
	}, "\n")
	require.Equal(t, expected, tree.Dot("rbtree"))
}

func TestWriteDot_Shape(t *testing.T) {
	tree := New[int, int]()
	for i := 0; i < 100; i++ {
		_, _, err := tree.Insert(i, i)
		require.NoError(t, err)
	}
	before := tree.Entries()

	var sb strings.Builder
	require.NoError(t, WriteDot(&sb, tree, "big"))
	out := sb.String()
	require.Equal(t, 100, strings.Count(out, "label=<"))
	require.Equal(t, 99, strings.Count(out, " -> "))
	require.Equal(t, int(tree.Len()), strings.Count(out, "color=red")+strings.Count(out, "color=black"))
	require.True(t, strings.HasPrefix(out, "digraph \"big\" {\n    n0 "))

	// Pure traversal.
	require.Equal(t, before, tree.Entries())
	require.NoError(t, Validate(tree))
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestWriteDot_WriterError(t *testing.T) {
	tree := New[int, int]()
	_, _, err := tree.Insert(1, 1)
	require.NoError(t, err)
	require.EqualError(t, WriteDot(failWriter{}, tree, "x"), "closed")
}
