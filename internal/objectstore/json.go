package objectstore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FormatJSON encodes v the way every stored document is written: two-space
// indentation, no HTML escaping, trailing newline.
func FormatJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseJSON decodes a stored document into v.
func ParseJSON(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
