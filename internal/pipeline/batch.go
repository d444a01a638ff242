package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/artificial-agent/ros-to-huggingface/internal/observability"
)

// BagExt is the file extension that marks a file as a bag.
const BagExt = ".bag"

// BagOpener opens one bag file as a message source.
type BagOpener interface {
	Open(path string) (BagSource, error)
}

// BagResult is the per-bag outcome of a batch run.
type BagResult struct {
	Path string
	Err  error
}

// Driver runs the extraction pipeline over a directory of bags, smallest
// file first so quick bags finish and surface failures early. One bag's
// failure never halts the batch.
type Driver struct {
	pipeline *Pipeline
	opener   BagOpener
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewDriver creates a batch Driver.
func NewDriver(p *Pipeline, opener BagOpener, logger *slog.Logger, metrics *observability.Metrics) *Driver {
	return &Driver{pipeline: p, opener: opener, logger: logger, metrics: metrics}
}

// Run extracts every bag file directly under dir, sequentially, in ascending
// size order. It returns one result per bag; the error is non-nil only when
// the directory itself cannot be listed or the context is cancelled.
func (d *Driver) Run(ctx context.Context, dir string) ([]BagResult, error) {
	bags, err := listBags(dir)
	if err != nil {
		return nil, err
	}
	if len(bags) == 0 {
		d.logger.Warn("no bag files found", "dir", dir)
		return nil, nil
	}

	results := make([]BagResult, 0, len(bags))
	for i, path := range bags {
		d.logger.Info("extracting bag file", "index", i, "total", len(bags), "path", path)

		err := d.RunBag(ctx, path)
		if err != nil {
			d.logger.Error("bag extraction failed", "path", path, "error", err)
		}
		results = append(results, BagResult{Path: path, Err: err})

		if cerr := ctx.Err(); cerr != nil {
			return results, cerr
		}
	}

	return results, nil
}

// RunBag opens and extracts a single bag, guaranteeing the source is closed.
func (d *Driver) RunBag(ctx context.Context, path string) (err error) {
	defer func() {
		d.metrics.BagsProcessed.Inc()
		if err != nil {
			d.metrics.BagFailures.Inc()
		}
	}()

	src, err := d.opener.Open(path)
	if err != nil {
		return fmt.Errorf("open bag: %w", err)
	}

	extractErr := d.pipeline.Extract(ctx, src)
	closeErr := src.Close()
	return errors.Join(extractErr, closeErr)
}

// listBags returns the non-hidden *.bag files directly under dir, sorted by
// file size ascending (ties broken by name for a stable order).
func listBags(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list bag dir: %w", err)
	}

	type bagFile struct {
		path string
		size int64
	}
	var bags []bagFile

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != BagExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		bags = append(bags, bagFile{path: filepath.Join(dir, name), size: info.Size()})
	}

	sort.Slice(bags, func(i, j int) bool {
		if bags[i].size != bags[j].size {
			return bags[i].size < bags[j].size
		}
		return bags[i].path < bags[j].path
	})

	paths := make([]string, len(bags))
	for i, b := range bags {
		paths[i] = b.path
	}
	return paths, nil
}
