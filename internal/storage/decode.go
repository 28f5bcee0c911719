package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeJSONMap is the single boundary where storage-native numbers become
// plain Go values. Caller-supplied metadata is schemaless, so numbers are
// decoded as json.Number and resolved to float64, falling back to the string
// form when the value does not parse as a float. No value ever raises here.
func decodeJSONMap(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode json object: %w", err)
	}

	normalized := normalizeValue(raw)
	out, ok := normalized.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoded value is not an object")
	}
	return out, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return f
	case []any:
		for i := range val {
			val[i] = normalizeValue(val[i])
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = normalizeValue(val[k])
		}
		return val
	default:
		return v
	}
}
