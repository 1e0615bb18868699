// Package ocrupdater fills in extracted_text for image attachments that were
// stored while OCR was disabled or failed.
package ocrupdater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"notesapp/models"
	"notesapp/pkg/media"
)

const defaultBatch = 100

// Source pages through attachments lacking text and records new text.
type Source interface {
	MissingText(ctx context.Context, afterID uint, limit int) ([]models.Media, error)
	SetExtractedText(ctx context.Context, mediaID uint, text string) error
}

type Options struct {
	// DryRun prints the proposed updates instead of writing them.
	DryRun bool
	Batch  int
	Out    io.Writer
	Log    *zap.Logger
}

// Result counts what a Run did.
type Result struct {
	Scanned int
	Updated int
	Skipped int
	Failed  int
}

type Updater struct {
	src     Source
	storage media.Storage
	ocr     media.Extractor
	opts    Options
}

func New(src Source, storage media.Storage, ocr media.Extractor, opts Options) *Updater {
	if opts.Batch <= 0 {
		opts.Batch = defaultBatch
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Updater{src: src, storage: storage, ocr: ocr, opts: opts}
}

// Run walks every attachment without text once. Per-row failures are logged
// and counted; only listing errors and cancellation stop the run.
func (u *Updater) Run(ctx context.Context) (Result, error) {
	var res Result
	var after uint
	for {
		rows, err := u.src.MissingText(ctx, after, u.opts.Batch)
		if err != nil {
			return res, err
		}
		for _, m := range rows {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			after = m.ID
			res.Scanned++
			switch err := u.one(ctx, m); {
			case errors.Is(err, errSkip):
				res.Skipped++
			case err != nil:
				res.Failed++
				u.opts.Log.Warn("ocr update failed", zap.Uint("media_id", m.ID), zap.Error(err))
			default:
				res.Updated++
			}
		}
		if len(rows) < u.opts.Batch {
			return res, nil
		}
	}
}

var errSkip = errors.New("skip")

func (u *Updater) one(ctx context.Context, m models.Media) error {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(m.FilePath)), ".")
	if !media.IsImage(ext) || !u.storage.Manages(m.FilePath) {
		return errSkip
	}
	rc, err := u.storage.Open(ctx, m.FilePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", m.FilePath, err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", m.FilePath, err)
	}
	text, err := u.ocr.Extract(ctx, data)
	if err != nil {
		return err
	}
	if text == "" {
		return errSkip
	}
	if u.opts.DryRun {
		fmt.Fprintf(u.opts.Out, "DRY: would update media id=%d file=%s chars=%d\n", m.ID, m.FilePath, len(text))
		return nil
	}
	if err := u.src.SetExtractedText(ctx, m.ID, text); err != nil {
		return err
	}
	fmt.Fprintf(u.opts.Out, "updated media id=%d file=%s chars=%d\n", m.ID, m.FilePath, len(text))
	return nil
}
