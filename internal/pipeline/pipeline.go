package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/wire-resistivity-etl/internal/domain"
	"github.com/couchcryptid/wire-resistivity-etl/internal/observability"
)

// Extractor reads every raw entry from the capture.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawEntry, error)
}

// Transformer converts a raw entry into a sample.
type Transformer interface {
	Transform(ctx context.Context, entry domain.RawEntry) (domain.Sample, error)
}

// Loader writes derived samples to an optional destination.
type Loader interface {
	Load(ctx context.Context, samples []domain.Sample) (int, error)
}

// Pipeline runs extract, transform, fit, and load once over a capture.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	geometry    domain.WireGeometry
	out         io.Writer
	logger      *slog.Logger
	metrics     *observability.Metrics

	mu      sync.RWMutex
	samples []domain.Sample
	report  domain.Report
	ready   atomic.Bool
}

// New creates a Pipeline. loader may be nil when no sink is configured.
// The run summary is printed to out.
func New(e Extractor, t Transformer, l Loader, g domain.WireGeometry, out io.Writer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		geometry:    g,
		out:         out,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once a run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("analysis has not completed yet")
	}
	return nil
}

// Samples returns a copy of the table built by the last run, in archive order.
func (p *Pipeline) Samples() []domain.Sample {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.Sample, len(p.samples))
	copy(out, p.samples)
	return out
}

// Report returns the last completed run's report.
func (p *Pipeline) Report() (domain.Report, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.report, p.ready.Load()
}

// Run extracts all entries, builds the sample table, fits the resistivity
// line, and publishes samples to the loader when one is configured.
// Invalid geometry, extraction and fit failures are returned; sink failures
// are recorded in the report.
func (p *Pipeline) Run(ctx context.Context) (domain.Report, error) {
	if err := p.geometry.Validate(); err != nil {
		return domain.Report{}, err
	}

	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	entries, err := p.extractor.Extract(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("extract entries: %w", err)
	}
	p.metrics.EntriesRead.Add(float64(len(entries)))

	samples, counts, err := p.transformAll(ctx, entries)
	if err != nil {
		return domain.Report{}, err
	}

	p.mu.Lock()
	p.samples = samples
	p.mu.Unlock()

	fmt.Fprintf(p.out, "Computed %d entries successfully, found %d errors.\n\n", counts.Samples, counts.Errors)
	p.logger.Info("entries classified",
		"entries", counts.Entries,
		"samples", counts.Samples,
		"errors", counts.Errors,
		"unrelated", counts.Unrelated,
		"invalid", counts.Invalid,
	)

	fit, err := domain.FitLine(samples, p.geometry.ReferenceResistivity)
	if err != nil {
		return domain.Report{}, fmt.Errorf("fit resistivity: %w", err)
	}
	printFit(p.out, fit)
	p.metrics.FitSlope.Set(fit.Slope)
	p.metrics.FitIntercept.Set(fit.Intercept)
	p.metrics.FitAlpha.Set(fit.Alpha)

	report := domain.NewReport(counts, fit, p.geometry)
	p.load(ctx, samples, &report)

	p.mu.Lock()
	p.report = report
	p.mu.Unlock()
	p.ready.Store(true)

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("analysis complete",
		"run_id", report.RunID,
		"fit_points", fit.Points,
		"slope", fit.Slope,
		"alpha", fit.Alpha,
		"duration", time.Since(start),
	)
	return report, nil
}

// transformAll classifies every entry in order. Missing-field responses are
// counted as errors; unrelated bodies are skipped without counting.
func (p *Pipeline) transformAll(ctx context.Context, entries []domain.RawEntry) ([]domain.Sample, domain.Counts, error) {
	counts := domain.Counts{Entries: len(entries)}
	samples := make([]domain.Sample, 0, len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, counts, err
		}

		sample, err := p.transformer.Transform(ctx, entry)
		switch {
		case errors.Is(err, domain.ErrUnrelatedBody):
			counts.Unrelated++
			p.metrics.UnrelatedSkipped.Inc()
			p.logger.Debug("skipping unrelated entry", "index", entry.Index, "url", entry.URL, "reason", err)
			continue
		case err != nil:
			counts.Errors++
			p.metrics.MissingFieldErrors.Inc()
			p.logger.Warn("sensor response dropped", "index", entry.Index, "url", entry.URL, "error", err)
			continue
		}

		if !sample.Valid() {
			counts.Invalid++
			p.metrics.InvalidValues.Inc()
		}
		samples = append(samples, sample)
	}

	counts.Samples = len(samples)
	p.metrics.SamplesExtracted.Add(float64(counts.Samples))
	return samples, counts, nil
}

func (p *Pipeline) load(ctx context.Context, samples []domain.Sample, report *domain.Report) {
	if p.loader == nil {
		return
	}
	n, err := p.loader.Load(ctx, samples)
	report.Published = n
	p.metrics.SamplesPublished.Add(float64(n))
	if err != nil {
		report.SinkError = err.Error()
		p.logger.Error("publish samples failed", "error", err, "published", n, "samples", len(samples))
		return
	}
	p.logger.Info("samples published", "count", n)
}

func printFit(w io.Writer, fit domain.Fit) {
	fmt.Fprintf(w, "p0: %g\n", fit.P0)
	fmt.Fprintf(w, "Slope: %g\n", fit.Slope)
	fmt.Fprintf(w, "Interception: %g\n", fit.Intercept)
	fmt.Fprintf(w, "Alpha: %g\n", fit.Alpha)
}
