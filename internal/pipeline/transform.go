package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/wire-resistivity-etl/internal/domain"
)

// SampleTransformer implements Transformer using the domain extract, parse,
// and enrich functions for a fixed wire geometry.
type SampleTransformer struct {
	geometry domain.WireGeometry
	logger   *slog.Logger
}

// NewTransformer creates a SampleTransformer for the given wire geometry.
func NewTransformer(geometry domain.WireGeometry, logger *slog.Logger) *SampleTransformer {
	return &SampleTransformer{
		geometry: geometry,
		logger:   logger,
	}
}

func (t *SampleTransformer) Transform(_ context.Context, entry domain.RawEntry) (domain.Sample, error) {
	reading, err := domain.ExtractReading(entry)
	if err != nil {
		return domain.Sample{}, err
	}

	sample := domain.ParseSample(reading, entry.Index)
	if !sample.Valid() {
		t.logger.Debug("non-numeric sensor value",
			"index", entry.Index,
			"resistance", reading.Resistance,
			"temperature_c", reading.TemperatureC,
			"cycle", reading.Cycle,
		)
	}

	return domain.EnrichSample(sample, t.geometry), nil
}
