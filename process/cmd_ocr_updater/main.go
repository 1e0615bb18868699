// Command cmd_ocr_updater runs OCR over stored image attachments that have no
// extracted text yet.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"notesapp/config"
	"notesapp/pkg/logging"
	"notesapp/pkg/media"
	"notesapp/pkg/ocr"
	ocrupdater "notesapp/process/ocr_updater"
	"notesapp/repository"
)

func main() {
	opts := config.BindFlags(pflag.CommandLine)
	dry := pflag.Bool("dry-run", true, "print proposed updates without writing them")
	batch := pflag.Int("batch", 100, "rows fetched per query")
	pflag.Parse()

	if err := run(*opts, *dry, *batch); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
}

func run(opts config.Options, dry bool, batch int) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	log, _, err := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: true, Service: "ocr-updater"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{DSN: cfg.DB.DSN, LogLevel: logger.Error})
	if err != nil {
		return err
	}
	defer func() { _ = repository.Close(db) }()

	var storage media.Storage
	if cfg.Media.Backend == "s3" {
		storage, err = media.NewS3Storage(ctx, cfg.Media.S3)
	} else {
		storage, err = media.NewLocalStorage(cfg.Media.UploadBase)
	}
	if err != nil {
		return err
	}

	u := ocrupdater.New(repository.NewMediaRepo(db), storage, ocr.New(log, cfg.Media.OCRLanguages...), ocrupdater.Options{
		DryRun: dry,
		Batch:  batch,
		Out:    os.Stdout,
		Log:    log,
	})
	res, err := u.Run(ctx)
	log.Info("ocr update finished",
		zap.Bool("dry_run", dry),
		zap.Int("scanned", res.Scanned),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
	)
	return err
}
