package instrument

import (
	"encoding/json"
	"strings"
)

// Masked replaces the value of a hidden field.
const Masked = "***"

// Masker hides the values of configured field names, compared
// case-insensitively, in log attributes and decoded JSON.
type Masker struct {
	keys map[string]struct{}
}

// NewMasker builds a Masker for fields. Blank names are ignored.
func NewMasker(fields ...string) Masker {
	keys := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			keys[f] = struct{}{}
		}
	}
	return Masker{keys: keys}
}

// Empty reports whether the Masker hides nothing.
func (m Masker) Empty() bool {
	return len(m.keys) == 0
}

// Hides reports whether values under key are masked.
func (m Masker) Hides(key string) bool {
	_, ok := m.keys[strings.ToLower(key)]
	return ok
}

// Value masks a decoded JSON value: objects are walked recursively and
// hidden keys replaced. Other values are returned unchanged.
func (m Masker) Value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.Hides(k) {
				out[k] = Masked
				continue
			}
			out[k] = m.Value(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.Hides(k) {
				out[k] = Masked
				continue
			}
			out[k] = inner
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.Value(inner)
		}
		return out
	default:
		return v
	}
}

// JSON masks a serialized object or array. ok is false when payload is not one.
func (m Masker) JSON(payload []byte) (masked string, ok bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return "", false
	}
	out, err := json.Marshal(m.Value(v))
	if err != nil {
		return "", false
	}
	return string(out), true
}
