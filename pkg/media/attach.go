package media

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Extractor pulls text out of an image.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (string, error)
}

// Upload is an attachment about to be stored.
type Upload struct {
	Data     []byte
	Ext      string // without dot
	FileType string // caller supplied file_type, may be empty
}

// Stored describes what was written and should be recorded in the media row.
type Stored struct {
	Path          string
	FileType      *string
	ExtractedText *string
	Downscaled    bool
}

// Attacher runs uploads through downscaling and OCR before handing them to a
// Storage.
type Attacher struct {
	storage       Storage
	maxImageBytes int
	ocr           Extractor
	log           *zap.Logger
}

// AttacherOption configures an Attacher.
type AttacherOption func(*Attacher)

// WithMaxImageBytes sets the downscale budget. Zero disables downscaling.
func WithMaxImageBytes(n int) AttacherOption {
	return func(a *Attacher) { a.maxImageBytes = n }
}

// WithExtractor enables OCR on image attachments.
func WithExtractor(e Extractor) AttacherOption {
	return func(a *Attacher) { a.ocr = e }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) AttacherOption {
	return func(a *Attacher) {
		if l != nil {
			a.log = l
		}
	}
}

func NewAttacher(storage Storage, opts ...AttacherOption) *Attacher {
	a := &Attacher{storage: storage, maxImageBytes: DefaultMaxImageBytes, log: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Storage returns the backend uploads are written to.
func (a *Attacher) Storage() Storage { return a.storage }

// Save stores u under a random name. OCR failures are logged and leave
// ExtractedText nil; they never fail the upload.
func (a *Attacher) Save(ctx context.Context, u Upload) (*Stored, error) {
	data := u.Data
	out := &Stored{}
	if IsImage(u.Ext) {
		if err := CheckPixels(data, MaxImagePixels); errors.Is(err, ErrImageTooLarge) {
			a.log.Warn("image too large to process, storing original", zap.Error(err))
			return a.store(ctx, u, data, out)
		}
		resized, changed, err := Downscale(data, u.Ext, a.maxImageBytes)
		if err != nil {
			a.log.Warn("downscale failed, storing original", zap.Error(err))
		} else if changed {
			a.log.Debug("image downscaled", zap.Int("from_bytes", len(data)), zap.Int("to_bytes", len(resized)))
			data = resized
			out.Downscaled = true
		}
		if a.ocr != nil {
			text, err := a.ocr.Extract(ctx, data)
			switch {
			case err != nil:
				a.log.Warn("ocr failed", zap.Error(err))
			case text != "":
				out.ExtractedText = &text
			}
		}
	}

	return a.store(ctx, u, data, out)
}

func (a *Attacher) store(ctx context.Context, u Upload, data []byte, out *Stored) (*Stored, error) {
	contentType := u.FileType
	if contentType == "" && u.Ext != "" {
		contentType = MimeFromPath("x." + u.Ext)
	}
	path, err := a.storage.Put(ctx, RandomName(u.Ext), data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}
	out.Path = path
	if u.FileType != "" {
		ft := u.FileType
		out.FileType = &ft
	}
	return out, nil
}
