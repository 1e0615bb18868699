package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"notesapp/config"
	"notesapp/pkg/logging"
	"notesapp/pkg/tracing"
	"notesapp/repository"
)

var version = "dev"

const usage = `usage: notesapp [flags] [serve|migrate]

  serve    run the HTTP API (default)
  migrate  apply database migrations and exit
`

func main() {
	flags := pflag.NewFlagSet("notesapp", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	opts := config.BindFlags(flags)
	_ = flags.Parse(os.Args[1:])

	loader, err := config.NewLoader(*opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := loader.Config()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, level, err := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		Service: cfg.OTEL.ServiceName,
		Version: version,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd := flags.Arg(0); cmd {
	case "", "serve":
		if loader.Watch(func(c *config.Config, err error) {
			if err != nil {
				log.Warn("config reload rejected", zap.Error(err))
				return
			}
			level.SetLevel(logging.ParseLevel(c.Log.Level))
			log.Info("config reloaded", zap.String("log_level", c.Log.Level))
		}) {
			log.Info("watching config file", zap.String("path", opts.File))
		}
		err = serve(ctx, cfg, log)
	case "migrate":
		err = migrate(ctx, cfg, log)
	default:
		flags.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("exiting", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func migrate(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := openDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer func() { _ = repository.Close(db) }()
	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if !cfg.Log.Pretty {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, err := tracing.Setup(ctx, tracing.Config{
		Enable:      cfg.OTEL.Enable,
		Endpoint:    cfg.OTEL.OTLPEndpoint,
		ServiceName: cfg.OTEL.ServiceName,
		SampleRatio: cfg.OTEL.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	db, err := openDB(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer func() { _ = repository.Close(db) }()
	if cfg.DB.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			return err
		}
	}

	a, err := newApp(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	go a.tokens.Run(ctx, a.onSweep)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.handler(tp.Enabled()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
