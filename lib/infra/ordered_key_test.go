package infra

import (
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAscAndDescComparator(t *testing.T) {
	asc, desc := AscComparator[int](), DescComparator[int]()
	testcases := []struct {
		i, j      int
		asc, desc int64
	}{
		{1, 1, 0, 0},
		{1, 2, -1, 1},
		{2, 1, 1, -1},
		{-5, 3, -1, 1},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.asc, asc(tc.i, tc.j))
		require.Equal(t, tc.desc, desc(tc.i, tc.j))
	}

	strAsc := AscComparator[string]()
	require.Equal(t, int64(-1), strAsc("abc", "abd"))
	require.Equal(t, int64(0), strAsc("", ""))
}

func TestComparator_NaN(t *testing.T) {
	nan := math.NaN()
	asc, desc := AscComparator[float64](), DescComparator[float64]()
	testcases := []struct {
		name      string
		i, j      float64
		asc, desc int64
	}{
		{"nan equals nan", nan, nan, 0, 0},
		{"nan before numbers", nan, -math.MaxFloat64, -1, 1},
		{"nan before -inf", nan, math.Inf(-1), -1, 1},
		{"numbers after nan", 1.5, nan, 1, -1},
		{"signed zeros", math.Copysign(0, -1), 0, 0, 0},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.Equal(tt, tc.asc, asc(tc.i, tc.j))
			require.Equal(tt, tc.desc, desc(tc.i, tc.j))
		})
	}
}

func TestLessComparator(t *testing.T) {
	type version struct {
		major, minor int
	}
	cmp := LessComparator[version](func(a, b version) bool {
		if a.major != b.major {
			return a.major < b.major
		}
		return a.minor < b.minor
	})
	require.Equal(t, int64(0), cmp(version{1, 2}, version{1, 2}))
	require.Equal(t, int64(-1), cmp(version{1, 2}, version{1, 3}))
	require.Equal(t, int64(1), cmp(version{2, 0}, version{1, 9}))

	// Case-insensitive keys are equivalent but not identical.
	fold := LessComparator[string](func(a, b string) bool {
		return strings.ToLower(a) < strings.ToLower(b)
	})
	require.Equal(t, int64(0), fold("ABC", "abc"))

	keys := []string{"b", "C", "a"}
	sort.Slice(keys, func(i, j int) bool { return fold(keys[i], keys[j]) < 0 })
	require.Equal(t, []string{"a", "b", "C"}, keys)
}
