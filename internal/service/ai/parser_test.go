package ai

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContentPlainString(t *testing.T) {
	msg := &schema.Message{Role: schema.Assistant, Content: `{"answer":"hi"}`}
	assert.Equal(t, `{"answer":"hi"}`, ExtractContent(msg))
}

func TestExtractContentParts(t *testing.T) {
	msg := &schema.Message{
		Role: schema.Assistant,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{URL: "https://example.com/a.png"}},
			{Type: schema.ChatMessagePartTypeText, Text: "X"},
		},
	}
	assert.Equal(t, "X", ExtractContent(msg))
}

func TestExtractContentNoTextPart(t *testing.T) {
	msg := &schema.Message{
		Role: schema.Assistant,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{URL: "https://example.com/a.png"}},
		},
	}
	assert.Equal(t, "", ExtractContent(msg))
	assert.Equal(t, "", ExtractContent(nil))
}

func TestParseStructuredInvalidJSON(t *testing.T) {
	assert.Nil(t, ParseStructured[initialPayload]("not json at all"))
	assert.Nil(t, ParseStructured[initialPayload](""))
	assert.Nil(t, ParseStructured[initialPayload]("{truncated"))
}

func TestParseStructuredDefaults(t *testing.T) {
	payload := ParseStructured[initialPayload](`{"label_text":"Mona Lisa","explanation":"A painting."}`)
	require.NotNil(t, payload)
	assert.Equal(t, "Mona Lisa", payload.LabelText)
	assert.Empty(t, cleanSuggestions(payload.FollowupSuggestions))
}

func TestCleanSuggestions(t *testing.T) {
	in := []string{" first ", "", "second", "   ", "third", "fourth"}
	out := cleanSuggestions(in)
	assert.Equal(t, []string{"first", "second", "third"}, out)
}
