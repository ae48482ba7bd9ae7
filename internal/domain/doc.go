// Package domain models copper-wire sensor telemetry captured in HTTP traffic.
//
// # Data Source
//
// A bench rig heats a copper wire and polls a small HTTP device that reports
// the wire's resistance and temperature. The browser session polling the
// device is recorded as a HAR (HTTP Archive) file; every poll response body
// carries one reading.
//
// # Payload Format
//
// Sensor responses are JSON objects with four positional sensor slots:
//
//	{"ok":{"sensor":[
//	    {"value":"0.012"},  // [0] resistance, ohms
//	    {"value":"25.0"},   // [1] temperature, degrees Celsius
//	    {"value":"A"},      // [2] heater mode
//	    {"value":"3"}       // [3] heating cycle number
//	]}}
//
// Values are usually strings but bare JSON numbers are accepted; their literal
// text is kept so coercion behaves the same for both.
//
// Two kinds of non-sample entries appear in captures:
//
//   - Truncated responses (failed check byte on the device side) where a key
//     such as "ok" is absent. These count as errors. See [ErrMissingField].
//   - Unrelated exchanges such as cookie updates, whose bodies are not JSON or
//     have a different shape. These are skipped silently. See [ErrUnrelatedBody].
//
// # Physics
//
//	TemperatureK = TemperatureC + 273.15
//	DeltaT       = TemperatureK - BaseTemperatureK
//	Area         = π (Diameter/2)²
//	Resistivity  = Resistance × Area / Length
//
// Resistivity against DeltaT is fitted with a straight line ρ = m·ΔT + b.
// The temperature coefficient of resistivity is α = m / ρ₀, where ρ₀ is the
// reference resistivity of copper (1.631743e-8 Ω·m by default).
package domain
