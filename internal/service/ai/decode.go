package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParse means a model reply could not be read as the requested JSON object.
var ErrParse = errors.New("model output is not the expected json object")

// DecodeObject extracts the JSON object embedded in a model reply and decodes
// it into out. Markdown fences and chatter around the object are ignored.
// Every key in required must be present and non-null.
func DecodeObject(content string, out any, required ...string) error {
	raw, err := extractObject(content)
	if err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	for _, key := range required {
		value, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return fmt.Errorf("%w: missing %q", ErrParse, key)
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

func extractObject(content string) ([]byte, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("%w: missing json object", ErrParse)
	}
	return []byte(trimmed[start : end+1]), nil
}
