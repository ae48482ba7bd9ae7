package domain

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// KelvinOffset converts degrees Celsius to kelvin.
const KelvinOffset = 273.15

// Defaults for the bench wire: 61 m of 140 µm copper, referenced to 30 °C.
const (
	DefaultWireLength           = 61.0
	DefaultWireDiameter         = 140e-6
	DefaultBaseTemperatureC     = 30.0
	DefaultReferenceResistivity = 1.631743e-8
)

var validate = validator.New()

// WireGeometry holds the fixed physical inputs of a run. Lengths are metres,
// resistivity is Ω·m.
type WireGeometry struct {
	Length               float64 `json:"length_m" validate:"gt=0"`
	Diameter             float64 `json:"diameter_m" validate:"gt=0"`
	BaseTemperatureC     float64 `json:"base_temperature_c" validate:"gte=-273.15"`
	ReferenceResistivity float64 `json:"reference_resistivity" validate:"gt=0"`
}

// DefaultGeometry returns the bench wire constants.
func DefaultGeometry() WireGeometry {
	return WireGeometry{
		Length:               DefaultWireLength,
		Diameter:             DefaultWireDiameter,
		BaseTemperatureC:     DefaultBaseTemperatureC,
		ReferenceResistivity: DefaultReferenceResistivity,
	}
}

// Validate checks every constant is physically meaningful.
func (g WireGeometry) Validate() error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("invalid wire geometry: %w", err)
	}
	return nil
}

// Area is the wire cross-section in m².
func (g WireGeometry) Area() float64 {
	r := g.Diameter / 2
	return math.Pi * r * r
}

// BaseTemperatureK is the reference temperature in kelvin.
func (g WireGeometry) BaseTemperatureK() float64 {
	return g.BaseTemperatureC + KelvinOffset
}
