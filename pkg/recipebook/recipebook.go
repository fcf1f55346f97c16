// Package recipebook converts recipe spreadsheets into backup documents the
// recipe app can import, and optionally loads them into a local store.
package recipebook

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/recipebook/pkg/recipebook/backup"
	"github.com/cognicore/recipebook/pkg/recipebook/cover"
	"github.com/cognicore/recipebook/pkg/recipebook/sheet"
	"github.com/cognicore/recipebook/pkg/recipebook/store"
	"github.com/cognicore/recipebook/pkg/recipebook/transform"
)

// Converter is the conversion facade
type Converter struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures a Converter
type Options struct {
	// Store receives every converted document when set.
	Store  store.Store
	Logger *zap.Logger
	// Now supplies the run timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewConverter creates a Converter with the given dependencies
func NewConverter(opts Options) *Converter {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Converter{
		store:   opts.Store,
		logger:  opts.Logger,
		now:     opts.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// ConvertRequest describes one conversion
type ConvertRequest struct {
	InputPath string
	Sheet     string
	// CoverDir enables cover lookup. A directory that does not exist
	// disables covers for the run.
	CoverDir  string
	Cover     cover.Options
	StripHTML bool
	// OutputPath receives the JSON document; empty skips writing.
	OutputPath string
}

// Result is the outcome of a conversion
type Result struct {
	RunID      string
	Document   backup.Document
	Report     *transform.Report
	OutputPath string
}

// Convert reads the sheet, builds the document, writes it and imports it.
// Only an unreadable sheet or a failed write/import is an error; bad rows
// and bad covers are reported, not returned.
func (c *Converter) Convert(ctx context.Context, req ConvertRequest) (Result, error) {
	now := c.now()
	runID := c.newRunID(now)
	logger := c.logger.With(zap.String("run_id", runID))

	rows, err := sheet.ReadRows(req.InputPath, req.Sheet)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", req.InputPath, err)
	}
	logger.Info("sheet loaded", zap.String("path", req.InputPath), zap.Int("rows", len(rows)))

	opts := transform.Options{
		StripHTML: req.StripHTML,
		Now:       func() time.Time { return now },
		Logger:    logger,
	}
	if dir := req.CoverDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			logger.Info("cover lookup enabled", zap.String("dir", dir), zap.String("pattern", "<recipe name>"+cover.Ext))
			opts.Covers = cover.NewProcessor(dir, req.Cover, logger)
		} else {
			logger.Info("cover directory not found, covers disabled", zap.String("dir", dir))
		}
	}

	doc, report := transform.NewPipeline(opts).Run(rows)
	res := Result{RunID: runID, Document: doc, Report: report}

	if req.OutputPath != "" {
		if err := backup.WriteFile(req.OutputPath, doc); err != nil {
			return res, fmt.Errorf("write %s: %w", req.OutputPath, err)
		}
		res.OutputPath = req.OutputPath
		logger.Info("backup written", zap.String("path", req.OutputPath))
	}

	if c.store != nil {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := c.store.Import(ctx, runID, doc); err != nil {
			return res, fmt.Errorf("import: %w", err)
		}
		logger.Info("backup imported into store")
	}

	return res, nil
}

func (c *Converter) newRunID(t time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), c.entropy).String()
}
