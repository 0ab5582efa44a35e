package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/alloc"
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

var (
	errStressModelMismatch = errors.New("[xtree] stress tree diverged from the model")
	errStressLeak          = errors.New("[xtree] stress tree leaked nodes")
	errStressIncomplete    = errors.New("[xtree] stress trees not completed")
)

type stressNode = tree.Node[uint64, uint64]

type treeStats struct {
	inserted      int64
	assigned      int64
	erased        int64
	found         int64
	rejected      int64
	allocations   int64
	deallocations int64
}

func (stats *treeStats) add(other treeStats) {
	stats.inserted += other.inserted
	stats.assigned += other.assigned
	stats.erased += other.erased
	stats.found += other.found
	stats.rejected += other.rejected
	stats.allocations += other.allocations
	stats.deallocations += other.deallocations
}

func runStressCommand(ctx context.Context, opts *stressOptions, stdout io.Writer) error {
	var (
		logger xlog.XLogger
		pool   *ants.Pool
	)
	app := newApp(&opts.common,
		fx.Supply(opts),
		fx.Provide(newWorkerPool),
		fx.Populate(&logger, &pool),
	)
	return runApp(ctx, app, func(ctx context.Context) error {
		stats, elapsed, err := runStress(ctx, opts, pool, logger)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout,
			"trees=%d ops=%d inserted=%d assigned=%d erased=%d found=%d rejected=%d allocations=%d deallocations=%d elapsed=%s\n",
			opts.trees, opts.ops*opts.trees, stats.inserted, stats.assigned, stats.erased, stats.found,
			stats.rejected, stats.allocations, stats.deallocations, elapsed,
		)
		return err
	})
}

// runStress drives one independent tree per task on the pool. The trees
// share nothing, the results are merged after all tasks are done.
func runStress(ctx context.Context, opts *stressOptions, pool *ants.Pool, logger xlog.XLogger) (treeStats, time.Duration, error) {
	var (
		wg        sync.WaitGroup
		lock      sync.Mutex
		total     treeStats
		errs      error
		completed atomic.Int64
	)
	start := time.Now()
	for i := 0; i < opts.trees; i++ {
		idx := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			stats, err := stressTree(ctx, idx, opts, logger)
			lock.Lock()
			defer lock.Unlock()
			if err != nil {
				logger.ErrorStack(err, "stress tree failed", zap.Int("tree", idx))
				errs = multierr.Append(errs, err)
				return
			}
			total.add(stats)
			completed.Add(1)
		}); err != nil {
			wg.Done()
			lock.Lock()
			errs = multierr.Append(errs, err)
			lock.Unlock()
			break
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	if errs == nil && completed.Load() != int64(opts.trees) {
		errs = infra.WrapErrorStackWithMessage(errStressIncomplete, fmt.Sprintf("%d of %d completed", completed.Load(), opts.trees))
	}
	fields := []zap.Field{
		zap.Int("trees", opts.trees),
		zap.Int64("completed", completed.Load()),
		zap.Duration("elapsed", elapsed),
		zap.Int64("allocations", total.allocations),
		zap.Int64("rejected", total.rejected),
	}
	if rss, err := observability.ProcessRSS(); err != nil {
		logger.Warn("process rss unavailable", zap.Error(err))
	} else {
		fields = append(fields, zap.Uint64("rss", rss))
	}
	logger.Info("stress finished", fields...)
	return total, elapsed, errs
}

// stressTree runs random operations against a tree and a map model. The
// tree allocates from its own arena wrapped by a counting allocator, an
// exhausted arena rejects the insertion and leaves the tree unchanged.
func stressTree(ctx context.Context, idx int, opts *stressOptions, logger xlog.XLogger) (stats treeStats, err error) {
	rng := rand.New(rand.NewPCG(opts.seed, uint64(idx)))
	arena := alloc.NewArenaAllocator[stressNode](opts.arenaChunk, alloc.WithMaxObjects(opts.maxObjects))
	counting := alloc.NewCountingAllocator[stressNode](arena, alloc.WithStats(fmt.Sprintf("stress-%d", idx)))
	t := tree.New[uint64, uint64](
		tree.WithRBTreeAllocator[uint64, uint64](counting),
		tree.WithRBTreeLogger[uint64, uint64](logger),
	)
	model := make(map[uint64]uint64, min(opts.keys, 1<<16))
	defer func() {
		t.Release()
		stats.allocations, stats.deallocations = counting.Allocations(), counting.Deallocations()
		if err == nil && counting.Live() != 0 {
			err = infra.WrapErrorStackWithMessage(errStressLeak, fmt.Sprintf("tree %d live %d", idx, counting.Live()))
		}
	}()

	mismatch := func(op string, key uint64) error {
		return infra.WrapErrorStackWithMessage(errStressModelMismatch, fmt.Sprintf("tree %d %s key %d", idx, op, key))
	}
	for i := 0; i < opts.ops; i++ {
		if i&0x3ff == 0 && ctx.Err() != nil {
			return stats, ctx.Err()
		}
		key, val := rng.Uint64N(opts.keys), rng.Uint64()
		switch rng.IntN(4) {
		case 0, 1:
			_, inserted, err := t.InsertOrAssign(key, val)
			if errors.Is(err, alloc.ErrAllocatorExhausted) {
				stats.rejected++
				if _, ok := model[key]; ok {
					return stats, mismatch("assign", key)
				}
				continue
			} else if err != nil {
				return stats, err
			}
			if _, ok := model[key]; ok == inserted {
				return stats, mismatch("insert", key)
			}
			if inserted {
				stats.inserted++
			} else {
				stats.assigned++
			}
			model[key] = val
		case 2:
			_, ok := model[key]
			if t.Erase(key) != ok {
				return stats, mismatch("erase", key)
			}
			if ok {
				stats.erased++
				delete(model, key)
			}
		case 3:
			it := t.Find(key)
			expected, ok := model[key]
			if it.Valid() != ok || (ok && it.Val() != expected) {
				return stats, mismatch("find", key)
			}
			if ok {
				stats.found++
			}
		}
		if opts.validateEvery > 0 && (i+1)%opts.validateEvery == 0 {
			if err := tree.Validate(t); err != nil {
				return stats, err
			}
		}
	}

	if err := tree.Validate(t); err != nil {
		return stats, err
	}
	if t.Len() != int64(len(model)) {
		return stats, mismatch("len", uint64(t.Len()))
	}
	for k, v := range t.All() {
		if expected, ok := model[k]; !ok || expected != v {
			return stats, mismatch("iterate", k)
		}
	}

	clone, err := t.Clone()
	if errors.Is(err, alloc.ErrAllocatorExhausted) {
		stats.rejected++
		return stats, nil
	} else if err != nil {
		return stats, err
	}
	defer clone.Release()
	if !tree.Equal(t, clone) {
		return stats, mismatch("clone", 0)
	}
	return stats, nil
}
