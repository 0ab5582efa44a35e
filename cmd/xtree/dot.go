package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/safeopen"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/xlog"
)

func runDotCommand(ctx context.Context, opts *dotOptions, stdin io.Reader, stdout io.Writer) error {
	var logger xlog.XLogger
	app := newApp(&opts.common, fx.Populate(&logger))
	return runApp(ctx, app, func(ctx context.Context) error {
		return runDot(opts, logger, stdin, stdout)
	})
}

func runDot(opts *dotOptions, logger xlog.XLogger, stdin io.Reader, stdout io.Writer) (err error) {
	in, err := openDotInput(opts, stdin)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(in))

	pairs, err := readPairs(in)
	if err != nil {
		return err
	}

	out, err := openDotOutput(opts, stdout)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(out))

	if opts.numeric {
		err = buildDot(out, pairs, func(s string) (int64, error) {
			return strconv.ParseInt(s, 10, 64)
		}, opts, logger)
	} else {
		err = buildDot(out, pairs, func(s string) (string, error) {
			return s, nil
		}, opts, logger)
	}
	if err != nil {
		return err
	}
	logger.Info("dot exported",
		zap.String("name", opts.name),
		zap.Int("pairs", len(pairs)),
		zap.String("out", lo.Ternary(len(opts.out) == 0, "<stdout>", opts.out)),
	)
	return nil
}

// readPairs reads "key value" or "key=value" lines. Empty lines and lines
// starting with '#' are skipped.
func readPairs(r io.Reader) ([]tree.Pair[string, string], error) {
	pairs := make([]tree.Pair[string, string], 0, 64)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, "="); ok {
			pairs = append(pairs, tree.Pair[string, string]{
				Key: strings.TrimSpace(k),
				Val: strings.TrimSpace(v),
			})
			continue
		}
		fields := strings.Fields(line)
		pairs = append(pairs, tree.Pair[string, string]{
			Key: fields[0],
			Val: strings.Join(fields[1:], " "),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// buildDot inserts the pairs in input order, a later pair assigns the value
// of an earlier pair with an equivalent key.
func buildDot[K infra.OrderedKey](
	w io.Writer,
	pairs []tree.Pair[string, string],
	parse func(string) (K, error),
	opts *dotOptions,
	logger xlog.XLogger,
) error {
	treeOpts := []tree.RBTreeOpt[K, string]{tree.WithRBTreeLogger[K, string](logger)}
	if opts.desc {
		treeOpts = append(treeOpts, tree.WithRBTreeDesc[K, string]())
	}
	t := tree.New[K, string](treeOpts...)
	defer t.Release()

	for i, p := range pairs {
		key, err := parse(p.Key)
		if err != nil {
			return infra.WrapErrorStackWithMessage(err, fmt.Sprintf("[xtree] pair %d key %q", i+1, p.Key))
		}
		if _, _, err = t.InsertOrAssign(key, p.Val); err != nil {
			return err
		}
	}
	if err := tree.Validate(t); err != nil {
		logger.ErrorStack(err, "dot tree corrupted")
		return err
	}
	return tree.WriteDot(w, t, opts.name)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func openDotInput(opts *dotOptions, stdin io.Reader) (io.ReadCloser, error) {
	if opts.in == "" || opts.in == "-" {
		return io.NopCloser(stdin), nil
	}
	dir, file := filepath.Split(filepath.Clean(opts.in))
	if len(dir) == 0 {
		dir = "."
	}
	f, err := safeopen.OpenBeneath(dir, file)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func openDotOutput(opts *dotOptions, stdout io.Writer) (io.WriteCloser, error) {
	if len(opts.out) == 0 {
		return nopCloser{stdout}, nil
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return nil, err
	}
	f, err := safeopen.OpenFileBeneath(opts.outDir, opts.out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}
