package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// RawEntry is one recorded request/response exchange taken from a capture.
type RawEntry struct {
	Index    int    // position in the archive, zero based
	PageRef  string // HAR page the entry belongs to
	Method   string
	URL      string
	Status   int
	MimeType string
	Body     string // response body text, already decoded
}

// SensorReading holds the four sensor slot values exactly as captured.
type SensorReading struct {
	Resistance   string
	TemperatureC string
	Mode         string
	Cycle        string
}

// Sample is one row of the analysis table after coercion and enrichment.
// Non-numeric inputs leave NaN in the float fields and CycleValid false.
type Sample struct {
	Entry        int       `json:"entry"`
	Cycle        int       `json:"cycle"`
	CycleValid   bool      `json:"-"`
	TemperatureC float64   `json:"temperature_c"`
	TemperatureK float64   `json:"temperature_k"`
	Resistance   float64   `json:"resistance"`
	Mode         string    `json:"mode"`
	DeltaT       float64   `json:"delta_t"`
	Resistivity  float64   `json:"resistivity"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// Valid reports whether every numeric field parsed.
func (s Sample) Valid() bool {
	return s.CycleValid && isFinite(s.TemperatureC) && isFinite(s.Resistance)
}

// OutputEvent is the serialized form of a sample destined for a sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeSample marshals a valid sample into an OutputEvent keyed by cycle.
func SerializeSample(s Sample) (OutputEvent, error) {
	if !s.Valid() {
		return OutputEvent{}, fmt.Errorf("serialize sample %d: non-numeric fields", s.Entry)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize sample %d: %w", s.Entry, err)
	}
	return OutputEvent{
		Key:   []byte(strconv.Itoa(s.Cycle)),
		Value: data,
		Headers: map[string]string{
			"mode":         s.Mode,
			"processed_at": s.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
