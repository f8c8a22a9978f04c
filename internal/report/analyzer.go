package report

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/spritetint/internal/colour"
	"github.com/jmylchreest/spritetint/internal/image"
)

// Analyzer extracts palettes for every image in a directory.
type Analyzer struct {
	config     colour.Config
	loader     colour.Loader
	extensions []string
	workers    int
	logger     hclog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLoader overrides the image loader.
func WithLoader(l colour.Loader) Option {
	return func(a *Analyzer) {
		a.loader = l
	}
}

// WithExtensions sets which file extensions are analysed.
func WithExtensions(exts ...string) Option {
	return func(a *Analyzer) {
		a.extensions = image.NormaliseExtensions(exts)
	}
}

// WithWorkers bounds the number of images processed at once.
// Values below one fall back to the number of CPUs.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithLogger sets the logger used for progress and per-file failures.
func WithLogger(l hclog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnalyzer creates an Analyzer for cfg.
func NewAnalyzer(cfg colour.Config, opts ...Option) *Analyzer {
	a := &Analyzer{
		config:     cfg,
		loader:     image.NewFileLoader(),
		extensions: image.DefaultExtensions(),
		workers:    runtime.NumCPU(),
		logger:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers < 1 {
		a.workers = runtime.NumCPU()
	}
	return a
}

// Scan lists the files in dir that Analyze would process.
func (a *Analyzer) Scan(dir string) ([]string, error) {
	files, err := image.ScanDirectory(dir, a.extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	a.logger.Debug("scanned directory", "dir", dir, "files", len(files), "extensions", a.extensions)
	return files, nil
}

// Analyze builds a Report for the images directly inside dir.
//
// The configuration is validated before any file is read and an invalid one is
// returned as *colour.ConfigError. A file that cannot be loaded is logged,
// listed in Report.Failures and given an empty palette; it never stops the
// batch. Only configuration, directory and context errors are returned.
func (a *Analyzer) Analyze(ctx context.Context, dir string) (*Report, error) {
	if err := a.config.Validate(); err != nil {
		return nil, err
	}
	files, err := a.Scan(dir)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeFiles(ctx, files)
}

// AnalyzeFiles builds a Report for files, keyed by base name.
// Per-file failures are handled as in Analyze.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, files []string) (*Report, error) {
	extractor, err := colour.NewExtractor(a.config)
	if err != nil {
		return nil, err
	}

	report := New()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			name := filepath.Base(path)
			start := time.Now()
			palette, err := extractor.ExtractFile(a.loader, path)
			if err != nil {
				a.logger.Error("failed to process image", "path", path, "error", err)
			} else {
				a.logger.Debug("processed image", "file", name, "colours", palette.Len(), "elapsed", time.Since(start))
			}

			mu.Lock()
			defer mu.Unlock()
			report.Palettes[name] = palette
			if err != nil {
				report.Failures = append(report.Failures, Failure{File: name, Err: err})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Failures are collected in completion order.
	slices.SortFunc(report.Failures, func(x, y Failure) int {
		return strings.Compare(x.File, y.File)
	})
	return report, nil
}
