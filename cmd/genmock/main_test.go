package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wire-resistivity-etl/internal/adapter/har"
	"github.com/couchcryptid/wire-resistivity-etl/internal/domain"
	"github.com/couchcryptid/wire-resistivity-etl/internal/observability"
	"github.com/couchcryptid/wire-resistivity-etl/internal/pipeline"
)

func TestGenerate_RoundTripsThroughPipeline(t *testing.T) {
	for _, encode := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "exp_data.har")
		require.NoError(t, write(path, generate(options{
			samples:  60,
			seed:     3,
			page:     "page_4",
			alpha:    copperAlpha,
			noise:    0,
			base64:   encode,
			geometry: domain.DefaultGeometry(),
		})))

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		g := domain.DefaultGeometry()
		p := pipeline.New(
			har.NewLoader(path, "page_4", logger),
			pipeline.NewTransformer(g, logger),
			nil, g, io.Discard, logger, observability.NewMetricsForTesting(),
		)

		report, err := p.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 60, report.Counts.Samples)
		assert.Equal(t, 4, report.Counts.Errors) // i%17 == 8 for i in [0,60): 8, 25, 42, 59
		assert.Zero(t, report.Counts.Invalid)
		assert.InDelta(t, copperAlpha, report.Fit.Alpha, 1e-4)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	opts := options{samples: 10, seed: 9, page: "p", alpha: copperAlpha, noise: 0.01, geometry: domain.DefaultGeometry()}
	assert.Equal(t, generate(opts), generate(opts))
}
