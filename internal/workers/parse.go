package workers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON strips markdown code fences the model tends to wrap its
// output in and returns the bare JSON text.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		// Drop the opening fence line (``` or ```json) and the closing fence.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}

// parseJSONObject decodes a model response expected to be a single JSON
// object.
func parseJSONObject(text string) (map[string]any, error) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("model returned malformed JSON object: %w", err)
	}
	return parsed, nil
}

// parseJSONArray decodes a model response expected to be a JSON array of
// objects.
func parseJSONArray(text string) ([]map[string]any, error) {
	var parsed []map[string]any
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("model returned malformed JSON array: %w", err)
	}
	return parsed, nil
}
