package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/xlog"
)

func TestStressTree(t *testing.T) {
	testcases := []struct {
		name       string
		opts       stressOptions
		exhausting bool
	}{
		{
			name: "unbounded",
			opts: stressOptions{ops: 5000, keys: 256, seed: 1, arenaChunk: 16, validateEvery: 250},
		},
		{
			name:       "bounded arena",
			opts:       stressOptions{ops: 5000, keys: 256, seed: 2, arenaChunk: 16, maxObjects: 32, validateEvery: 100},
			exhausting: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			stats, err := stressTree(context.Background(), 0, &tc.opts, xlog.NewNopXLogger())
			require.NoError(tt, err)
			require.Greater(tt, stats.inserted, int64(0))
			require.Greater(tt, stats.erased, int64(0))
			require.Equal(tt, stats.allocations, stats.deallocations)
			if tc.exhausting {
				require.Greater(tt, stats.rejected, int64(0))
			} else {
				require.Zero(tt, stats.rejected)
				// every insertion plus the clone of the final tree
				require.GreaterOrEqual(tt, stats.allocations, stats.inserted)
			}
		})
	}
}

func TestStressTree_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := stressOptions{ops: 10, keys: 8, arenaChunk: 4}
	stats, err := stressTree(ctx, 0, &opts, xlog.NewNopXLogger())
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, stats.allocations)
}

func TestRunStress_Pool(t *testing.T) {
	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	defer pool.Release()

	opts := stressOptions{trees: 6, ops: 2000, keys: 128, seed: 7, arenaChunk: 32}
	stats, _, err := runStress(context.Background(), &opts, pool, xlog.NewNopXLogger())
	require.NoError(t, err)
	require.Equal(t, stats.allocations, stats.deallocations)
	require.Greater(t, stats.found, int64(0))
}

func TestRun_Stress(t *testing.T) {
	t.Setenv("XTREE_METRICS", "")
	var stdout bytes.Buffer
	err := run(context.Background(), []string{
		"stress",
		"--trees", "4",
		"--ops", "1000",
		"--keys", "64",
		"--seed", "3",
		"--workers", "2",
		"--validate-every", "100",
		"--log-level", "error",
	}, nil, &stdout)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(stdout.String(), "trees=4 ops=4000 "), stdout.String())
}
