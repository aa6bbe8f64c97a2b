package util

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// StripCodeFences removes a markdown code-fence wrapper from model output.
// Models regularly answer with ```json ... ``` even when told not to.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// ExtractJSONObject strips fences and verifies the remainder parses as a
// JSON object, returning it for field extraction with gjson.
func ExtractJSONObject(text string) (string, error) {
	clean := StripCodeFences(text)
	if clean == "" {
		return "", fmt.Errorf("model returned empty output")
	}
	if !gjson.Valid(clean) {
		return "", fmt.Errorf("model output is not valid JSON")
	}
	parsed := gjson.Parse(clean)
	if !parsed.IsObject() {
		return "", fmt.Errorf("model output is not a JSON object")
	}
	return clean, nil
}
