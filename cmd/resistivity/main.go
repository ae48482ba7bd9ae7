// Command resistivity extracts copper-wire sensor samples from a HAR capture,
// fits resistivity against temperature delta, and renders the plot.
//
// Configuration comes from environment variables (see internal/config).
// With SERVE=true the results stay available over HTTP until interrupted.
//
// Usage:
//
//	HAR_FILE=exp_data.har HAR_PAGE=page_4 go run ./cmd/resistivity
//
// Bench captures record the measurement run under page_4; HAR_PAGE restricts
// the analysis to it. Left empty, every page in the capture is read.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	httpadapter "github.com/couchcryptid/wire-resistivity-etl/internal/adapter/http"
	"github.com/couchcryptid/wire-resistivity-etl/internal/adapter/har"
	kafkaadapter "github.com/couchcryptid/wire-resistivity-etl/internal/adapter/kafka"
	"github.com/couchcryptid/wire-resistivity-etl/internal/config"
	"github.com/couchcryptid/wire-resistivity-etl/internal/observability"
	"github.com/couchcryptid/wire-resistivity-etl/internal/pipeline"
	"github.com/couchcryptid/wire-resistivity-etl/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	renderer, err := render.New(cfg.PlotRenderer, cfg.PlotFormat(), cfg.PlotWidth, cfg.PlotHeight)
	if err != nil {
		return err
	}

	// Kafka sink is feature-flagged via KAFKA_BROKERS.
	var sink pipeline.Loader
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		sink = writer
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	loader := har.NewLoader(cfg.HARFile, cfg.HARPage, logger)
	transformer := pipeline.NewTransformer(cfg.Geometry, logger)
	p := pipeline.New(loader, transformer, sink, cfg.Geometry, os.Stdout, logger, metrics)

	report, err := p.Run(ctx)
	if err != nil {
		return err
	}

	img, err := render.RenderImage(renderer, p.Samples(), report.Fit)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	if dir := filepath.Dir(cfg.PlotOutput); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create plot directory: %w", err)
		}
	}
	if err := os.WriteFile(cfg.PlotOutput, img.Data, 0o644); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	logger.Info("plot written", "path", cfg.PlotOutput, "renderer", cfg.PlotRenderer, "bytes", len(img.Data))

	if !cfg.Serve {
		return nil
	}
	return serve(ctx, cfg, p, img, logger)
}

// serve keeps the results available over HTTP until the context is cancelled.
func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, img render.Image, logger *slog.Logger) error {
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, img, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("serving results", "plot", "http://"+displayAddr(cfg.HTTPAddr)+"/plot")

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
