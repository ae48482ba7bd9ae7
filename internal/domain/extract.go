package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMissingField marks a sensor response with an absent key or slot.
	// These are truncated device responses and count as errors.
	ErrMissingField = errors.New("missing sensor field")

	// ErrUnrelatedBody marks a body that is not a sensor response at all,
	// e.g. a cookie update. Callers skip these without counting them.
	ErrUnrelatedBody = errors.New("unrelated response body")
)

// sensorSlots is the number of positional sensor values a response carries.
const sensorSlots = 4

// ExtractReading parses an entry's response body and reads the four sensor
// values at ok.sensor[0..3].value.
func ExtractReading(entry RawEntry) (SensorReading, error) {
	body, err := decodeBody(entry.Body)
	if err != nil {
		return SensorReading{}, err
	}

	root, ok := body.(map[string]any)
	if !ok {
		return SensorReading{}, fmt.Errorf("%w: body is %s", ErrUnrelatedBody, jsonKind(body))
	}

	okNode, err := lookup(root, "ok", "ok")
	if err != nil {
		return SensorReading{}, err
	}
	okObj, isObj := okNode.(map[string]any)
	if !isObj {
		return SensorReading{}, fmt.Errorf("%w: ok is %s", ErrUnrelatedBody, jsonKind(okNode))
	}

	sensorNode, err := lookup(okObj, "sensor", "ok.sensor")
	if err != nil {
		return SensorReading{}, err
	}
	var sensors []any
	switch t := sensorNode.(type) {
	case []any:
		sensors = t
	case map[string]any:
		// An object has no positional slots, so slot 0 is missing.
		return SensorReading{}, fmt.Errorf("%w: ok.sensor[0]", ErrMissingField)
	default:
		return SensorReading{}, fmt.Errorf("%w: ok.sensor is %s", ErrUnrelatedBody, jsonKind(sensorNode))
	}

	var values [sensorSlots]string
	for i := range values {
		path := fmt.Sprintf("ok.sensor[%d]", i)
		if i >= len(sensors) {
			return SensorReading{}, fmt.Errorf("%w: %s", ErrMissingField, path)
		}
		slot, isObj := sensors[i].(map[string]any)
		if !isObj {
			return SensorReading{}, fmt.Errorf("%w: %s is %s", ErrUnrelatedBody, path, jsonKind(sensors[i]))
		}
		v, err := lookup(slot, "value", path+".value")
		if err != nil {
			return SensorReading{}, err
		}
		values[i] = valueText(v)
	}

	return SensorReading{
		Resistance:   values[0],
		TemperatureC: values[1],
		Mode:         values[2],
		Cycle:        values[3],
	}, nil
}

// decodeBody parses JSON keeping numbers as their literal text.
func decodeBody(body string) (any, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: empty body", ErrUnrelatedBody)
	}
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrelatedBody, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrUnrelatedBody)
	}
	return v, nil
}

func lookup(obj map[string]any, key, path string) (any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, path)
	}
	return v, nil
}

// valueText renders a sensor value as text. Null becomes an empty string and
// nested objects or arrays are re-encoded, so neither coerces to a number.
func valueText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(t)
		return strings.TrimSpace(buf.String())
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "bool"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
