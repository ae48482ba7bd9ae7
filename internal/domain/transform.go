package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseSample coerces a reading's text values to numbers. Values that do not
// parse become NaN (Cycle: CycleValid=false); the row itself is kept.
func ParseSample(reading SensorReading, entry int) Sample {
	cycle, cycleOK := parseCycle(reading.Cycle)
	return Sample{
		Entry:        entry,
		Cycle:        cycle,
		CycleValid:   cycleOK,
		TemperatureC: parseFloatOrNaN(reading.TemperatureC),
		Resistance:   parseFloatOrNaN(reading.Resistance),
		Mode:         strings.TrimSpace(reading.Mode),
	}
}

// EnrichSample derives kelvin temperature, the delta against the base
// temperature, and resistivity from the wire geometry.
func EnrichSample(s Sample, g WireGeometry) Sample {
	s.TemperatureK = s.TemperatureC + KelvinOffset
	s.DeltaT = s.TemperatureK - g.BaseTemperatureK()
	s.Resistivity = s.Resistance * (g.Area() / g.Length)
	s.ProcessedAt = clock.Now()
	return s
}

// parseFloatOrNaN parses a string as float64, returning NaN on failure.
func parseFloatOrNaN(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseCycle accepts integers and any finite float; fractional cycles are
// truncated toward zero.
func parseCycle(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	v := parseFloatOrNaN(s)
	if !isFinite(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(math.Trunc(v)), true
}
