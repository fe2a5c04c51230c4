package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hostbench/hostbench/internal/bench"
	"github.com/hostbench/hostbench/internal/errors"
	"github.com/hostbench/hostbench/internal/httpapi"
	"github.com/hostbench/hostbench/internal/lock"
	"github.com/hostbench/hostbench/internal/logger"
	"github.com/hostbench/hostbench/internal/proc"
	"github.com/hostbench/hostbench/internal/store"
)

// serveCommand runs the HTTP comparison server until interrupted.
func serveCommand(addr string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Serve.Addr
	}

	// Long-running mode logs to rotated files instead of stderr.
	log, err := logger.NewFileLogger(cfg.Serve.LogDir)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open the serve log directory",
			"Check permissions on "+cfg.Serve.LogDir)
	}
	defer logger.Sync(log)

	st := store.New(cfg.Store.Path, log)

	// Browser-triggered runs go through the same suite and run lock as
	// 'hostbench run' started from a shell.
	runner := func(ctx context.Context, progress bench.ProgressFunc) (*bench.HostResult, error) {
		l, lerr := lock.Acquire(lock.DefaultOptions())
		if lerr != nil {
			return nil, lerr
		}
		defer func() {
			if rerr := l.Release(); rerr != nil {
				log.Warn("releasing run lock: %v", rerr)
			}
		}()

		suite := bench.NewSuite(cfg.Probes, proc.NewRunner(), log)
		suite.OnProgress(progress)
		return suite.Run(ctx)
	}

	api := httpapi.New(st, runner, log)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("serving comparison view on %s (results: %s)", addr, cfg.Store.Path)
		fmt.Printf("Serving on %s (Ctrl+C to stop)\n", addr)
		if serr := server.ListenAndServe(); serr != nil && serr != http.ErrServerClosed {
			return errors.WrapWithCode(serr, errors.ErrConfig,
				"HTTP server failed",
				"Is something else listening on "+addr+"?")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	log.Info("server stopped")
	return nil
}
