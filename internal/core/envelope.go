package core

import (
	"encoding/json"
	"strings"
)

// Envelope is a free-form JSON object attached to a shadow event.
// The backend evolves these payloads independently of this client, so
// accessors are total: they tolerate missing keys and unexpected value
// shapes and return zero values instead of failing.
type Envelope map[string]any

// Str returns the trimmed string at key, or "" when the key is absent
// or holds a non-string value.
func (e Envelope) Str(key string) string {
	if e == nil {
		return ""
	}
	s, ok := e[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Bool returns the boolean at key, or false when absent or non-boolean.
func (e Envelope) Bool(key string) bool {
	if e == nil {
		return false
	}
	b, _ := e[key].(bool)
	return b
}

// Float returns the numeric value at key. JSON numbers may arrive as
// float64, json.Number, or integer types depending on the decoder.
func (e Envelope) Float(key string) (float64, bool) {
	if e == nil {
		return 0, false
	}
	return toFloat(e[key])
}

// Map returns the nested object at key, or nil when absent or not an
// object.
func (e Envelope) Map(key string) Envelope {
	if e == nil {
		return nil
	}
	switch v := e[key].(type) {
	case map[string]any:
		return Envelope(v)
	case Envelope:
		return v
	default:
		return nil
	}
}

// StringSlice returns the list of strings at key. A bare string becomes
// a one-element slice, non-string list members are skipped, and absent
// or malformed values yield nil. Blank members are dropped.
func (e Envelope) StringSlice(key string) []string {
	if e == nil {
		return nil
	}
	switch v := e[key].(type) {
	case []string:
		return compactStrings(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
		return nil
	default:
		return nil
	}
}

// Has reports whether key is present at all, regardless of value.
func (e Envelope) Has(key string) bool {
	if e == nil {
		return false
	}
	_, ok := e[key]
	return ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
