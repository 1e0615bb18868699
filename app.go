package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"notesapp/config"
	"notesapp/pkg/auth"
	"notesapp/pkg/media"
	"notesapp/pkg/metrics"
	"notesapp/pkg/ocr"
	"notesapp/pkg/tokenstore"
	"notesapp/repository"
	"notesapp/server"
)

// app is everything serve needs once the database is open.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	tokens  *tokenstore.Store
	metrics *metrics.Metrics
	server  *server.Server
}

func newApp(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (*app, error) {
	store := tokenstore.New(tokenstore.WithSweepInterval(cfg.Auth.SweepInterval))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, store.Len)

	tokens := auth.NewTokens([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	svc, err := auth.NewService(repository.NewUserRepo(db), tokens, store, cfg.Auth.SaltRounds)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	attacher, err := newAttacher(ctx, cfg.Media, log)
	if err != nil {
		return nil, err
	}

	srv := server.New(server.Deps{
		Auth:           svc,
		Tokens:         tokens,
		Revocations:    store,
		Notes:          repository.NewNoteRepo(db),
		Folders:        repository.NewFolderRepo(db),
		Tags:           repository.NewTagRepo(db),
		Media:          repository.NewMediaRepo(db),
		Attacher:       attacher,
		Health:         repository.NewHealth(db),
		Metrics:        m,
		Log:            log,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	})
	return &app{cfg: cfg, log: log, tokens: store, metrics: m, server: srv}, nil
}

func (a *app) handler(tracing bool) http.Handler {
	return a.server.Handler(server.HandlerConfig{
		AllowedOrigins: a.cfg.CORS.AllowedOrigins,
		Tracing:        tracing,
	})
}

func (a *app) onSweep(n int) {
	a.metrics.TokensSwept(n)
	if n > 0 {
		a.log.Debug("swept revoked tokens", zap.Int("removed", n))
	}
}

func newStorage(ctx context.Context, c config.Media) (media.Storage, error) {
	switch c.Backend {
	case "s3":
		s, err := media.NewS3Storage(ctx, c.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		return s, nil
	default:
		s, err := media.NewLocalStorage(c.UploadBase)
		if err != nil {
			return nil, fmt.Errorf("local storage: %w", err)
		}
		return s, nil
	}
}

func newAttacher(ctx context.Context, c config.Media, log *zap.Logger) (*media.Attacher, error) {
	storage, err := newStorage(ctx, c)
	if err != nil {
		return nil, err
	}
	opts := []media.AttacherOption{
		media.WithMaxImageBytes(c.MaxImageBytes),
		media.WithLogger(log),
	}
	if c.OCR {
		opts = append(opts, media.WithExtractor(ocr.New(log, c.OCRLanguages...)))
	}
	log.Info("media storage ready", zap.String("backend", c.Backend), zap.Bool("ocr", c.OCR))
	return media.NewAttacher(storage, opts...), nil
}
