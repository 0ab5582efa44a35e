package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

const appName = "xtree"

// maxProcs is GOMAXPROCS after it has been fitted to the container quota.
type maxProcs int

func newXLogger(lc fx.Lifecycle, opts *commonOptions) xlog.XLogger {
	enc := xlog.PlainText
	if strings.EqualFold(opts.logFormat, "json") {
		enc = xlog.JSON
	}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerWriter(xlog.StdErr),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerLevelName(opts.logLevel),
	)
	lc.Append(fx.StopHook(func() {
		// stderr may not support fsync.
		_ = logger.Sync()
	}))
	return logger
}

func newMaxProcs(lc fx.Lifecycle, logger xlog.XLogger) (maxProcs, error) {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.DebugLevel, format, args...)
	}))
	if err != nil {
		return 0, err
	}
	lc.Append(fx.StopHook(undo))
	return maxProcs(runtime.GOMAXPROCS(0)), nil
}

func registerMetrics(lc fx.Lifecycle, opts *commonOptions, logger xlog.XLogger) error {
	if opts.metrics == observability.NoneMetricsExporter {
		return nil
	}

	// The stdout exporter must not interleave with the command output.
	shutdown, err := observability.InitMetricsExporter(
		opts.metrics,
		opts.metricsInterval,
		stdoutmetric.WithWriter(os.Stderr),
	)
	if err != nil {
		return err
	}
	observability.InitAppStats(appName)

	var srv *http.Server
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if opts.metrics != observability.PrometheusMetricsExporter {
				return nil
			}
			ln, err := net.Listen("tcp", opts.metricsAddr)
			if err != nil {
				return err
			}
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv = &http.Server{
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "metrics server stopped")
				}
			}()
			logger.Info("metrics server started", zap.String("addr", ln.Addr().String()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			var err error
			if srv != nil {
				err = srv.Shutdown(ctx)
			}
			return multierr.Append(err, shutdown(ctx))
		},
	})
	return nil
}

func newWorkerPool(lc fx.Lifecycle, procs maxProcs, opts *stressOptions, logger xlog.XLogger) (*ants.Pool, error) {
	size := opts.workers
	if size <= 0 {
		size = int(procs)
	}
	pool, err := ants.NewPool(
		size,
		ants.WithLogger(xlog.NewAntsXLogger(logger)),
		ants.WithPanicHandler(func(r any) {
			logger.Error(fmt.Errorf("%v", r), "stress worker panic")
		}),
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() error {
		return pool.ReleaseTimeout(5 * time.Second)
	}))
	return pool, nil
}

func newApp(opts *commonOptions, options ...fx.Option) *fx.App {
	return fx.New(append([]fx.Option{
		fx.Supply(opts),
		fx.Provide(newXLogger, newMaxProcs),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(registerMetrics),
	}, options...)...)
}

// runApp starts the app, runs the command and stops the app. The stop
// errors are appended to the command error.
func runApp(ctx context.Context, app *fx.App, cmd func(ctx context.Context) error) (err error) {
	if err = app.Err(); err != nil {
		return err
	}
	if err = app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		err = multierr.Append(err, app.Stop(stopCtx))
	}()
	return cmd(ctx)
}
