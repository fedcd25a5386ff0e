package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Sanitize encodes v as JSON with every null removed at any depth: null object
// members are dropped and null array elements are removed.
func Sanitize(v interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	out, err := json.Marshal(StripNulls(tree))
	if err != nil {
		return nil, fmt.Errorf("encode sanitized: %w", err)
	}
	return out, nil
}

// StripNulls removes nulls from a decoded JSON tree
func StripNulls(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			if child == nil {
				continue
			}
			out[k] = StripNulls(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, child := range t {
			if child == nil {
				continue
			}
			out = append(out, StripNulls(child))
		}
		return out
	default:
		return v
	}
}
