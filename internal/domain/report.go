package domain

import (
	"time"

	"github.com/google/uuid"
)

// Counts tallies how archive entries were classified during a run.
type Counts struct {
	Entries   int `json:"entries"`
	Samples   int `json:"samples"`
	Errors    int `json:"errors"`    // missing-field responses
	Unrelated int `json:"unrelated"` // skipped non-sensor exchanges
	Invalid   int `json:"invalid"`   // samples with a non-numeric value
}

// Report summarises one analysis run.
type Report struct {
	RunID       string       `json:"run_id"`
	Counts      Counts       `json:"counts"`
	Fit         Fit          `json:"fit"`
	Geometry    WireGeometry `json:"geometry"`
	Published   int          `json:"published,omitempty"`
	SinkError   string       `json:"sink_error,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// NewReport stamps a report with a fresh run ID and the current time.
func NewReport(counts Counts, fit Fit, geometry WireGeometry) Report {
	return Report{
		RunID:       uuid.NewString(),
		Counts:      counts,
		Fit:         fit,
		Geometry:    geometry,
		GeneratedAt: clock.Now().UTC(),
	}
}
