package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wire-resistivity-etl/internal/domain"
	"github.com/couchcryptid/wire-resistivity-etl/internal/observability"
	"github.com/couchcryptid/wire-resistivity-etl/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	entries []domain.RawEntry
	err     error
}

func (m *mockExtractor) Extract(_ context.Context) ([]domain.RawEntry, error) {
	return m.entries, m.err
}

type mockLoader struct {
	loaded []domain.Sample
	err    error
}

func (m *mockLoader) Load(_ context.Context, samples []domain.Sample) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.loaded = append(m.loaded, samples...)
	return len(samples), nil
}

func newTestMetrics() *observability.Metrics {
	// Use unregistered metrics to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- helpers ---

func sensorBody(resistance, tempC, mode, cycle string) string {
	return fmt.Sprintf(`{"ok":{"sensor":[{"value":%q},{"value":%q},{"value":%q},{"value":%q}]}}`,
		resistance, tempC, mode, cycle)
}

func entries(bodies ...string) []domain.RawEntry {
	out := make([]domain.RawEntry, len(bodies))
	for i, b := range bodies {
		out[i] = domain.RawEntry{Index: i, URL: "http://device/sensor", Body: b}
	}
	return out
}

func newPipeline(ext pipeline.Extractor, ldr pipeline.Loader, out io.Writer) *pipeline.Pipeline {
	g := domain.DefaultGeometry()
	return pipeline.New(ext, pipeline.NewTransformer(g, discardLogger()), ldr, g, out, discardLogger(), newTestMetrics())
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockExtractor{entries: entries(
		sensorBody("0.012", "25.0", "A", "3"),
		"cookie=abc",
		sensorBody("0.013", "45.0", "A", "4"),
		`{"error":"check byte"}`,
		sensorBody("0.014", "65.0", "B", "5"),
	)}
	var out bytes.Buffer
	p := newPipeline(ext, nil, &out)

	require.Error(t, p.CheckReadiness(context.Background()))

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.Counts{Entries: 5, Samples: 3, Errors: 1, Unrelated: 1}, report.Counts)
	assert.Equal(t, 3, report.Fit.Points)
	assert.Greater(t, report.Fit.Slope, 0.0)
	assert.NotEmpty(t, report.RunID)
	require.NoError(t, p.CheckReadiness(context.Background()))

	samples := p.Samples()
	require.Len(t, samples, 3)
	assert.Equal(t, []int{0, 2, 4}, []int{samples[0].Entry, samples[1].Entry, samples[2].Entry})

	got, ok := p.Report()
	assert.True(t, ok)
	assert.Equal(t, report.RunID, got.RunID)

	text := out.String()
	assert.Contains(t, text, "Computed 3 entries successfully, found 1 errors.\n\n")
	assert.Contains(t, text, "p0: 1.631743e-08\n")
	assert.Contains(t, text, "Slope: ")
	assert.Contains(t, text, "Interception: ")
	assert.Contains(t, text, "Alpha: ")
}

func TestPipeline_Run_ExampleBody(t *testing.T) {
	ext := &mockExtractor{entries: entries(
		`{"ok":{"sensor":[{"value":"0.012"},{"value":"25.0"},{"value":"A"},{"value":"3"}]}}`,
		sensorBody("0.013", "35.0", "A", "4"),
	)}
	p := newPipeline(ext, nil, io.Discard)

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	s := p.Samples()[0]
	assert.Equal(t, 0.012, s.Resistance)
	assert.Equal(t, 25.0, s.TemperatureC)
	assert.Equal(t, "A", s.Mode)
	assert.Equal(t, 3, s.Cycle)
	assert.InDelta(t, 298.15, s.TemperatureK, 1e-9)
}

func TestPipeline_Run_MissingFieldCountsOnePerEntry(t *testing.T) {
	ext := &mockExtractor{entries: entries(
		sensorBody("0.012", "25.0", "A", "1"),
		`{"nok":{}}`,
		`{"ok":{}}`,
		`{"ok":{"sensor":[{"value":"1"}]}}`,
		`{"ok":{"sensor":{"value":"1"}}}`,
		sensorBody("0.013", "35.0", "A", "2"),
	)}
	metrics := newTestMetrics()
	g := domain.DefaultGeometry()
	p := pipeline.New(ext, pipeline.NewTransformer(g, discardLogger()), nil, g, io.Discard, discardLogger(), metrics)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Counts.Errors)
	assert.Equal(t, 2, report.Counts.Samples)
	assert.Zero(t, report.Counts.Unrelated)
	assert.Len(t, p.Samples(), 2)
}

func TestPipeline_Run_InvalidValuesKeptButNotFitted(t *testing.T) {
	ext := &mockExtractor{entries: entries(
		sensorBody("0.012", "25.0", "A", "1"),
		sensorBody("n/a", "30.0", "A", "2"),
		sensorBody("0.014", "45.0", "A", "3"),
	)}
	p := newPipeline(ext, nil, io.Discard)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Counts.Samples)
	assert.Equal(t, 1, report.Counts.Invalid)
	assert.Equal(t, 2, report.Fit.Points)
	assert.True(t, math.IsNaN(p.Samples()[1].Resistivity))
}

func TestPipeline_Run_ExtractError(t *testing.T) {
	p := newPipeline(&mockExtractor{err: errors.New("open har: no such file")}, nil, io.Discard)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract entries")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_InvalidGeometry(t *testing.T) {
	ext := &mockExtractor{entries: entries(sensorBody("0.012", "25.0", "A", "1"))}
	g := domain.DefaultGeometry()
	g.Diameter = 0
	p := pipeline.New(ext, pipeline.NewTransformer(g, discardLogger()), nil, g, io.Discard, discardLogger(), newTestMetrics())

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid wire geometry")
	assert.Empty(t, p.Samples())
}

func TestPipeline_Run_InsufficientData(t *testing.T) {
	var out bytes.Buffer
	p := newPipeline(&mockExtractor{entries: entries(sensorBody("0.012", "25.0", "A", "1"), "x")}, nil, &out)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrInsufficientData)
	assert.Contains(t, out.String(), "Computed 1 entries successfully, found 0 errors.")
	assert.Len(t, p.Samples(), 1)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	p := newPipeline(&mockExtractor{entries: entries(sensorBody("0.012", "25.0", "A", "1"))}, nil, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Run_LoadsSamples(t *testing.T) {
	ldr := &mockLoader{}
	p := newPipeline(&mockExtractor{entries: entries(
		sensorBody("0.012", "25.0", "A", "1"),
		sensorBody("0.013", "35.0", "A", "2"),
	)}, ldr, io.Discard)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, ldr.loaded, 2)
	assert.Equal(t, 2, report.Published)
	assert.Empty(t, report.SinkError)
}

func TestPipeline_Run_LoadErrorIsNotFatal(t *testing.T) {
	ldr := &mockLoader{err: errors.New("broker down")}
	p := newPipeline(&mockExtractor{entries: entries(
		sensorBody("0.012", "25.0", "A", "1"),
		sensorBody("0.013", "35.0", "A", "2"),
	)}, ldr, io.Discard)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "broker down", report.SinkError)
	assert.Zero(t, report.Published)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestSampleTransformer_Transform(t *testing.T) {
	g := domain.DefaultGeometry()
	tfm := pipeline.NewTransformer(g, discardLogger())

	s, err := tfm.Transform(context.Background(), domain.RawEntry{Index: 9, Body: sensorBody("0.02", "40", "B", "7")})
	require.NoError(t, err)
	assert.Equal(t, 9, s.Entry)
	assert.Equal(t, 7, s.Cycle)
	assert.InDelta(t, 10.0, s.DeltaT, 1e-9)
	assert.Equal(t, 0.02*(g.Area()/g.Length), s.Resistivity)

	_, err = tfm.Transform(context.Background(), domain.RawEntry{Body: "[]"})
	assert.ErrorIs(t, err, domain.ErrUnrelatedBody)

	_, err = tfm.Transform(context.Background(), domain.RawEntry{Body: "{}"})
	assert.ErrorIs(t, err, domain.ErrMissingField)
}
