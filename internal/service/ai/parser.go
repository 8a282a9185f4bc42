package ai

import (
	"encoding/json"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// ExtractContent pulls the text out of a model message. Providers return
// either a plain string body or an ordered list of typed parts; the first
// part carrying text wins. Anything else yields an empty string.
func ExtractContent(msg *schema.Message) string {
	if msg == nil {
		return ""
	}
	if msg.Content != "" {
		return msg.Content
	}
	for _, part := range msg.MultiContent {
		if part.Text != "" {
			return part.Text
		}
	}
	return ""
}

// ParseStructured decodes content against the expected payload shape.
// Malformed input returns nil rather than an error: a nil result signals
// that the model violated its output contract.
func ParseStructured[T any](content string) *T {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}

	var payload T
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil
	}
	return &payload
}

// cleanSuggestions trims entries, drops empties and caps the list at three.
func cleanSuggestions(raw []string) []string {
	cleaned := make([]string, 0, 3)
	for _, suggestion := range raw {
		suggestion = strings.TrimSpace(suggestion)
		if suggestion == "" {
			continue
		}
		cleaned = append(cleaned, suggestion)
		if len(cleaned) == 3 {
			break
		}
	}
	return cleaned
}
