package domain

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when a line cannot be fitted.
var ErrInsufficientData = errors.New("insufficient data for linear fit")

// Fit is a least-squares line of resistivity against temperature delta.
type Fit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Alpha     float64 `json:"alpha"` // temperature coefficient, Slope / P0, in 1/K
	P0        float64 `json:"p0"`
	Points    int     `json:"points"`
}

// At evaluates the fitted line at x.
func (f Fit) At(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// FitLine fits Resistivity = Slope*DeltaT + Intercept over the samples whose
// DeltaT and Resistivity are both finite. p0 is the reference resistivity.
func FitLine(samples []Sample, p0 float64) (Fit, error) {
	xs, ys := FitPoints(samples)
	return FitXY(xs, ys, p0)
}

// FitPoints returns the (DeltaT, Resistivity) pairs usable for fitting, in
// sample order.
func FitPoints(samples []Sample) (xs, ys []float64) {
	xs = make([]float64, 0, len(samples))
	ys = make([]float64, 0, len(samples))
	for _, s := range samples {
		if !isFinite(s.DeltaT) || !isFinite(s.Resistivity) {
			continue
		}
		xs = append(xs, s.DeltaT)
		ys = append(ys, s.Resistivity)
	}
	return xs, ys
}

// FitXY runs an ordinary least-squares fit of degree one.
func FitXY(xs, ys []float64, p0 float64) (Fit, error) {
	if len(xs) != len(ys) {
		return Fit{}, fmt.Errorf("fit: %d x values, %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return Fit{}, fmt.Errorf("%w: %d usable points", ErrInsufficientData, len(xs))
	}
	if stat.Variance(xs, nil) == 0 {
		return Fit{}, fmt.Errorf("%w: all temperature deltas equal", ErrInsufficientData)
	}
	if p0 == 0 {
		return Fit{}, errors.New("fit: reference resistivity is zero")
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return Fit{
		Slope:     slope,
		Intercept: intercept,
		Alpha:     slope / p0,
		P0:        p0,
		Points:    len(xs),
	}, nil
}
