package pin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/pinshelf/pinshelf-server/internal/domain"
)

// DecodePin decodes a pin from loosely typed JSON. Unknown fields are ignored,
// numeric strings are accepted, and values of the wrong type leave the field
// unset so Normalize applies its default. Only input that is not a JSON object
// is an error.
func DecodePin(data []byte) (domain.RecipePin, error) {
	m, err := decodeObject(data)
	if err != nil {
		return domain.RecipePin{}, fmt.Errorf("decode pin: %w", err)
	}
	return PinFromMap(m), nil
}

// DecodeStyle decodes a stored style blob with the same tolerance as DecodePin.
func DecodeStyle(data []byte) (domain.PinStyle, error) {
	var s domain.PinStyle
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	m, err := decodeObject(data)
	if err != nil {
		return s, fmt.Errorf("decode pin style: %w", err)
	}
	assignFields(reflect.ValueOf(&s).Elem(), m)
	return s, nil
}

// PinFromMap builds a pin from a generic map, as produced by JSON or YAML decoders.
func PinFromMap(m map[string]any) domain.RecipePin {
	var rp domain.RecipePin
	assignFields(reflect.ValueOf(&rp).Elem(), m)
	return rp
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("expected object")
	}
	return m, nil
}

func assignFields(v reflect.Value, m map[string]any) {
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		fv := v.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			assignFields(fv, m)
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		raw, ok := m[name]
		if !ok || raw == nil {
			continue
		}
		assignValue(fv, raw)
	}
}

func assignValue(fv reflect.Value, raw any) {
	switch fv.Kind() {
	case reflect.Float64:
		fv.SetFloat(SafeFloat(raw, 0))
	case reflect.Int:
		fv.SetInt(int64(SafeFloat(raw, 0)))
	case reflect.String:
		if s, ok := looseString(raw); ok {
			fv.SetString(s)
		}
	case reflect.Pointer:
		switch fv.Type().Elem().Kind() {
		case reflect.Float64:
			if f := SafeFloat(raw, math.NaN()); !math.IsNaN(f) {
				fv.Set(reflect.ValueOf(&f))
			}
		case reflect.String:
			if s, ok := looseString(raw); ok {
				fv.Set(reflect.ValueOf(&s))
			}
		case reflect.Bool:
			if b, ok := looseBool(raw); ok {
				fv.Set(reflect.ValueOf(&b))
			}
		}
	}
}

func looseString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64, int, int64:
		return formatNumber(SafeFloat(v, 0)), true
	default:
		return "", false
	}
}

func looseBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	case json.Number, float64, int, int64:
		return SafeFloat(v, 0) != 0, true
	default:
		return false, false
	}
}
