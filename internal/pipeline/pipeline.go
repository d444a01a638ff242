package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/artificial-agent/ros-to-huggingface/internal/config"
	"github.com/artificial-agent/ros-to-huggingface/internal/domain"
	"github.com/artificial-agent/ros-to-huggingface/internal/extractor"
	"github.com/artificial-agent/ros-to-huggingface/internal/observability"
	"github.com/artificial-agent/ros-to-huggingface/internal/sink"
)

// BagSource streams one bag's messages in arrival order. Next returns io.EOF
// when the bag is exhausted. MessageCount is the bag's total message count,
// used for progress reporting only.
type BagSource interface {
	Name() string
	MessageCount() int
	Next() (domain.Message, error)
	Close() error
}

// Pipeline extracts one bag at a time: it routes each configured topic's
// messages through the sampling window, the field-extractor registry, and the
// per-bag sink manager. Instances must not run concurrently against the same
// output directory.
type Pipeline struct {
	schema    *config.Schema
	registry  *extractor.Registry
	outputDir string
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	// running is read by the metrics server's readiness handler while the
	// extraction loop holds the pipeline, hence atomic.
	running atomic.Bool
}

// Running reports whether a bag is currently being extracted.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// New creates a Pipeline writing under outputDir.
func New(schema *config.Schema, registry *extractor.Registry, outputDir string,
	clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		schema:    schema,
		registry:  registry,
		outputDir: outputDir,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// Extract streams src to completion. Any failure aborts the bag's remaining
// messages; open sinks are released on every path. Per-topic cursors start at
// zero for each bag and count all messages on the topic, sampled or not.
func (p *Pipeline) Extract(ctx context.Context, src BagSource) (err error) {
	logger := p.logger.With("bag", src.Name())
	total := src.MessageCount()
	logger.Info("extracting bag", "messages", total)

	p.running.Store(true)
	defer p.running.Store(false)
	p.metrics.ExtractRunning.Set(1)
	defer p.metrics.ExtractRunning.Set(0)
	start := p.clock.Now()

	sinks := sink.NewManager(p.outputDir, src.Name(), p.clock, logger)
	defer func() {
		if cerr := sinks.CloseAll(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close sinks: %w", cerr))
		}
	}()

	cursors := make(map[string]int)
	progress := newProgressReporter(logger, p.clock, total)
	consumed := 0

	for {
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("extraction cancelled: %w", cerr)
		}

		msg, rerr := src.Next()
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read bag: %w", rerr)
		}

		consumed++
		p.metrics.MessagesConsumed.Inc()
		progress.advance(consumed)

		entry, ok := p.schema.Entry(msg.Topic)
		if !ok {
			continue
		}

		// first sighting this bag starts the cursor at zero
		cursor := cursors[msg.Topic]
		cursors[msg.Topic] = cursor + 1

		if !WindowFor(entry).Keep(cursor) {
			continue
		}

		if err := p.extractOne(sinks, entry, msg, cursor); err != nil {
			return err
		}
		p.metrics.MessagesExtracted.Inc()
	}

	progress.finish(consumed)
	p.metrics.BagDuration.Observe(p.clock.Since(start).Seconds())
	logger.Info("bag extracted", "consumed", consumed)
	return nil
}

func (p *Pipeline) extractOne(sinks *sink.Manager, entry config.Entry, msg domain.Message, cursor int) error {
	switch entry.OutputType {
	case config.OutputCSV:
		h, err := p.registry.Tabular(msg.Topic, msg.Type)
		if err != nil {
			return err
		}
		fields, err := h.Extract(msg, entry.ExtraOptions)
		if err != nil {
			return fmt.Errorf("extract row: %w", err)
		}
		s, err := sinks.TabularSink(msg.Topic, entry.OutputName, h.Columns())
		if err != nil {
			return err
		}
		if err := s.WriteRow(fields); err != nil {
			return err
		}
		p.metrics.RowsWritten.Inc()
		return nil

	case config.OutputImageDir:
		h, err := p.registry.Image(msg.Topic, msg.Type)
		if err != nil {
			return err
		}
		img, metadata, err := h.ExtractImage(msg, entry.ExtraOptions)
		if err != nil {
			return fmt.Errorf("extract image: %w", err)
		}
		s, err := sinks.ImageSink(msg.Topic, entry.OutputName)
		if err != nil {
			return err
		}
		// the cursor at accept time names the frame; throttling leaves gaps
		if err := s.WriteImage(cursor, img, metadata); err != nil {
			return err
		}
		p.metrics.ImagesWritten.Inc()
		return nil

	default:
		return fmt.Errorf("topic %s: unknown output type %q", entry.Topic, entry.OutputType)
	}
}
