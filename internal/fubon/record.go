package fubon

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Fielder is implemented by typed payload objects that expose their fields
// by name. The bool result reports whether the field exists at all.
type Fielder interface {
	RawField(name string) (any, bool)
}

// Record is one venue payload record. Payloads arrive in two shapes, a
// decoded JSON map or a typed object, and Record hides which one it holds so
// the normalization layer can probe fields uniformly.
type Record struct {
	m   map[string]any
	obj Fielder
}

// RecordFromMap wraps a decoded JSON object.
func RecordFromMap(m map[string]any) Record { return Record{m: m} }

// RecordFromObject wraps a typed payload object.
func RecordFromObject(obj Fielder) Record { return Record{obj: obj} }

// IsZero reports whether the record carries no payload.
func (r Record) IsZero() bool { return r.m == nil && r.obj == nil }

// Field returns the named field's raw value. Absent fields return ok=false;
// a present field holding nil returns (nil, true).
func (r Record) Field(name string) (any, bool) {
	if r.m != nil {
		v, ok := r.m[name]
		return v, ok
	}
	if r.obj != nil {
		return r.obj.RawField(name)
	}
	return nil, false
}

// UnmarshalJSON decodes a JSON object into the map shape.
func (r *Record) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	r.m = m
	r.obj = nil
	return nil
}

// MarshalJSON encodes the record for echoing raw payloads back to the venue.
// Only the map shape round-trips; typed objects encode as null.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.m)
}

// ---------------------------------------------------------------------------
// Field probes
//
// Each probe walks its alias names in order and takes the first field that is
// present and non-nil. A fully absent field yields the zero value without
// error; a present field whose value cannot be coerced is an error, since it
// means the venue changed a payload shape rather than omitted data.
// ---------------------------------------------------------------------------

func probeString(r Record, names ...string) (string, bool) {
	for _, name := range names {
		v, ok := r.Field(name)
		if !ok || v == nil {
			continue
		}
		if s, ok := coerceString(v); ok {
			return s, true
		}
	}
	return "", false
}

func probeFloat(r Record, names ...string) (float64, error) {
	for _, name := range names {
		v, ok := r.Field(name)
		if !ok || v == nil {
			continue
		}
		// Venues send "" for prices that do not apply. Treat it as absent.
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		f, ok := coerceFloat(v)
		if !ok {
			return 0, fmt.Errorf("field %q: cannot read %T as number", name, v)
		}
		return f, nil
	}
	return 0, nil
}

func probeInt(r Record, names ...string) (int, error) {
	f, err := probeFloat(r, names...)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func probeBool(r Record, names ...string) (bool, bool) {
	for _, name := range names {
		v, ok := r.Field(name)
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t, true
		case string:
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "true", "y", "1":
				return true, true
			case "false", "n", "0", "":
				return false, true
			}
		case float64:
			return t != 0, true
		case int:
			return t != 0, true
		}
	}
	return false, false
}

// probeRecord returns a nested record field.
func probeRecord(r Record, names ...string) (Record, bool) {
	for _, name := range names {
		v, ok := r.Field(name)
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case map[string]any:
			return RecordFromMap(t), true
		case Record:
			return t, true
		case Fielder:
			return RecordFromObject(t), true
		}
	}
	return Record{}, false
}

// probeList returns a list-valued field as records, dropping elements that
// are not record shaped.
func probeList(r Record, names ...string) ([]Record, bool) {
	for _, name := range names {
		v, ok := r.Field(name)
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case []Record:
			return t, true
		case []map[string]any:
			out := make([]Record, 0, len(t))
			for _, m := range t {
				out = append(out, RecordFromMap(m))
			}
			return out, true
		case []any:
			out := make([]Record, 0, len(t))
			for _, e := range t {
				switch el := e.(type) {
				case map[string]any:
					out = append(out, RecordFromMap(el))
				case Record:
					out = append(out, el)
				case Fielder:
					out = append(out, RecordFromObject(el))
				}
			}
			return out, true
		}
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// Scalar coercion
// ---------------------------------------------------------------------------

func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}
