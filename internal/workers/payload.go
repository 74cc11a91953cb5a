package workers

import (
	"fmt"

	"github.com/google/uuid"
)

// payloadString extracts a string field from a task payload, returning
// fallback when the key is absent or not a string.
func payloadString(payload map[string]any, key, fallback string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// payloadInt extracts an integer field from a task payload. JSON decoding
// produces float64 for numbers, so both are accepted.
func payloadInt(payload map[string]any, key string, fallback int) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// payloadUUID extracts and parses a required uuid field.
func payloadUUID(payload map[string]any, key string) (uuid.UUID, error) {
	raw, ok := payload[key].(string)
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("payload is missing required field %q", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("payload field %q is not a valid id: %w", key, err)
	}
	return id, nil
}

// payloadMap extracts a nested object field.
func payloadMap(payload map[string]any, key string) (map[string]any, error) {
	v, ok := payload[key].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload is missing required object %q", key)
	}
	return v, nil
}
