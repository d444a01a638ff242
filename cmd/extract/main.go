package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/artificial-agent/ros-to-huggingface/internal/adapter/http"
	rosbagadapter "github.com/artificial-agent/ros-to-huggingface/internal/adapter/rosbag"
	"github.com/artificial-agent/ros-to-huggingface/internal/config"
	"github.com/artificial-agent/ros-to-huggingface/internal/extractor"
	"github.com/artificial-agent/ros-to-huggingface/internal/observability"
	"github.com/artificial-agent/ros-to-huggingface/internal/pipeline"
)

func main() {
	bagfile := flag.String("bagfile", "canonical.bag", "bag file, or directory of bag files for a batch run")
	schemaPath := flag.String("config", "extract_config.yaml", "extraction schema YAML path")
	outputDir := flag.String("output-dir", "2-outputs", "directory for extracted data products")
	metricsAddr := flag.String("metrics-addr", "", "optional listen address for /metrics and health endpoints (overrides METRICS_ADDR)")
	flag.Parse()

	runtime, err := config.LoadRuntime()
	if err != nil {
		slog.Error("failed to load runtime config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(runtime.LogLevel, runtime.LogFormat)

	schema, err := config.LoadSchema(*schemaPath)
	if err != nil {
		logger.Error("failed to load extraction schema", "path", *schemaPath, "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Error("failed to create output dir", "path", *outputDir, "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	p := pipeline.New(schema, extractor.NewRegistry(), *outputDir, clockwork.NewRealClock(), logger, metrics)
	driver := pipeline.NewDriver(p, rosbagadapter.Opener{}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := runtime.MetricsAddr
	if *metricsAddr != "" {
		addr = *metricsAddr
	}
	var srv *httpadapter.Server
	if addr != "" {
		srv = httpadapter.NewServer(addr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	code := run(ctx, driver, logger, *bagfile)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), runtime.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}

	os.Exit(code)
}

// run dispatches to single-bag or batch extraction based on whether the
// input path carries the bag extension.
func run(ctx context.Context, driver *pipeline.Driver, logger *slog.Logger, bagfile string) int {
	if strings.HasSuffix(bagfile, pipeline.BagExt) {
		if err := driver.RunBag(ctx, bagfile); err != nil {
			logger.Error("extraction failed", "bag", bagfile, "error", err)
			return 1
		}
		logger.Info("extraction complete", "bag", bagfile)
		return 0
	}

	results, err := driver.Run(ctx, bagfile)
	if err != nil {
		logger.Error("batch aborted", "dir", bagfile, "error", err)
		return 1
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	switch {
	case failed == 0:
		logger.Info("batch complete", "bags", len(results))
		return 0
	case failed == len(results):
		logger.Error("batch failed", "bags", len(results))
		return 1
	default:
		// partial failures are reported per bag; the batch itself succeeded
		logger.Warn("batch complete with failures", "bags", len(results), "failed", failed)
		return 0
	}
}
