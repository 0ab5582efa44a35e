package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/observability"
)

var errInvalidOption = errors.New("[xtree] invalid option")

type commonOptions struct {
	logLevel        string
	logFormat       string
	metricsName     string
	metrics         observability.MetricsExporterType
	metricsAddr     string
	metricsInterval time.Duration
}

func (opts *commonOptions) bind(fs *pflag.FlagSet) {
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error), $XLOG_LVL if empty")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format (json, text), logs go to stderr")
	fs.StringVar(&opts.metricsName, "metrics", os.Getenv("XTREE_METRICS"), "metrics exporter (none, stdout, prometheus), $XTREE_METRICS if unset")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", ":9464", "listen address of the prometheus /metrics endpoint")
	fs.DurationVar(&opts.metricsInterval, "metrics-interval", 10*time.Second, "push interval of the stdout exporter")
}

func (opts *commonOptions) validate() error {
	typ, err := observability.ParseMetricsExporterType(opts.metricsName)
	if err != nil {
		return err
	}
	opts.metrics = typ
	switch strings.ToLower(opts.logFormat) {
	case "json", "text":
	default:
		return infra.WrapErrorStackWithMessage(errInvalidOption, fmt.Sprintf("--log-format %q", opts.logFormat))
	}
	if opts.metricsInterval <= 0 {
		return infra.WrapErrorStackWithMessage(errInvalidOption, "--metrics-interval must be positive")
	}
	return nil
}

type dotOptions struct {
	common  commonOptions
	in      string
	outDir  string
	out     string
	name    string
	desc    bool
	numeric bool
}

func parseDotOptions(args []string) (*dotOptions, error) {
	opts := &dotOptions{}
	fs := pflag.NewFlagSet("dot", pflag.ContinueOnError)
	opts.common.bind(fs)
	fs.StringVar(&opts.in, "in", "-", `input file of "key value" or "key=value" lines, "-" reads stdin`)
	fs.StringVar(&opts.outDir, "out-dir", ".", "directory the DOT file is created beneath")
	fs.StringVar(&opts.out, "out", "", "DOT file name under --out-dir, stdout if empty")
	fs.StringVar(&opts.name, "name", "rbtree", "graph name")
	fs.BoolVar(&opts.desc, "desc", false, "order the keys descending")
	fs.BoolVar(&opts.numeric, "numeric", false, "parse the keys as int64")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, infra.WrapErrorStackWithMessage(errInvalidOption, fmt.Sprintf("unexpected arguments %v", fs.Args()))
	}
	if err := opts.common.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

type stressOptions struct {
	common        commonOptions
	trees         int
	ops           int
	keys          uint64
	seed          uint64
	workers       int
	arenaChunk    int
	maxObjects    int
	validateEvery int
}

func parseStressOptions(args []string) (*stressOptions, error) {
	opts := &stressOptions{}
	fs := pflag.NewFlagSet("stress", pflag.ContinueOnError)
	opts.common.bind(fs)
	fs.IntVar(&opts.trees, "trees", 8, "number of independent trees")
	fs.IntVar(&opts.ops, "ops", 100_000, "number of random operations per tree")
	fs.Uint64Var(&opts.keys, "keys", 4096, "size of the key space")
	fs.Uint64Var(&opts.seed, "seed", uint64(time.Now().UnixNano()), "seed of the random workloads")
	fs.IntVar(&opts.workers, "workers", 0, "worker pool size, GOMAXPROCS if zero")
	fs.IntVar(&opts.arenaChunk, "arena-chunk", 256, "objects in the first chunk of each tree arena")
	fs.IntVar(&opts.maxObjects, "max-objects", 0, "live objects limit of each tree arena, zero is unbounded")
	fs.IntVar(&opts.validateEvery, "validate-every", 0, "validate the tree every n operations, zero validates at the end only")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, infra.WrapErrorStackWithMessage(errInvalidOption, fmt.Sprintf("unexpected arguments %v", fs.Args()))
	}
	switch {
	case opts.trees <= 0:
		return nil, infra.WrapErrorStackWithMessage(errInvalidOption, "--trees must be positive")
	case opts.ops < 0:
		return nil, infra.WrapErrorStackWithMessage(errInvalidOption, "--ops must not be negative")
	case opts.keys == 0:
		return nil, infra.WrapErrorStackWithMessage(errInvalidOption, "--keys must be positive")
	case opts.workers < 0, opts.maxObjects < 0, opts.validateEvery < 0:
		return nil, infra.WrapErrorStackWithMessage(errInvalidOption, "negative --workers, --max-objects or --validate-every")
	}
	if err := opts.common.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}
