package tree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestValidators_DetectCorruption(t *testing.T) {
	build := func() *rbTree[int, int] {
		tree := New[int, int]()
		for i := 1; i <= 3; i++ {
			_, _, err := tree.Insert(i, i)
			require.NoError(t, err)
		}
		require.NoError(t, Validate(tree))
		return tree.impl()
	}

	testcases := []struct {
		name     string
		corrupt  func(tree *rbTree[int, int])
		expected error
	}{
		{
			name: "red root",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.color = Red
			},
			expected: ErrRBTreeRedViolation,
		},
		{
			name: "red parent",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.left.left = &Node[int, int]{
					parent: tree.root.left,
					left:   tree.sentinel,
					right:  tree.sentinel,
					key:    0,
					color:  Red,
				}
				tree.count++
			},
			expected: ErrRBTreeRedViolation,
		},
		{
			name: "black depth",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.left.color = Black
			},
			expected: ErrRBTreeBlackViolation,
		},
		{
			name: "order",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.left.key = 10
			},
			expected: ErrRBTreeOrderViolation,
		},
		{
			name: "parent link",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.right.parent = tree.root.left
			},
			expected: ErrRBTreeOrderViolation,
		},
		{
			name: "sentinel color",
			corrupt: func(tree *rbTree[int, int]) {
				tree.sentinel.color = Red
			},
			expected: ErrRBTreeSentinelViolation,
		},
		{
			name: "root parent",
			corrupt: func(tree *rbTree[int, int]) {
				tree.root.parent = tree.root.left
			},
			expected: ErrRBTreeSentinelViolation,
		},
		{
			name: "size",
			corrupt: func(tree *rbTree[int, int]) {
				tree.count = 5
			},
			expected: ErrRBTreeSizeViolation,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := build()
			tc.corrupt(tree)
			err := Validate[int, int](tree)
			require.Error(tt, err)
			require.True(tt, errors.Is(err, tc.expected), "%v", err)
		})
	}
}

func TestValidate_CombinesViolations(t *testing.T) {
	tree := New[int, int]()
	for i := 1; i <= 3; i++ {
		_, _, err := tree.Insert(i, i)
		require.NoError(t, err)
	}
	impl := tree.impl()
	impl.root.left.color = Black
	impl.count = 7

	err := Validate(tree)
	require.ErrorIs(t, err, ErrRBTreeBlackViolation)
	require.ErrorIs(t, err, ErrRBTreeSizeViolation)
	require.Len(t, multierr.Errors(err), 2)
}
