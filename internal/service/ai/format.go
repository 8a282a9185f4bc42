package ai

import (
	"encoding/json"
	"fmt"
)

// ResponseFormat is the machine-checkable contract describing the exact JSON
// shape the model must return. It is rendered into the system prompt as a
// strict output instruction.
type ResponseFormat struct {
	Name   string       `json:"name"`
	Schema objectSchema `json:"schema"`
}

type objectSchema struct {
	Type                 string                    `json:"type"`
	AdditionalProperties bool                      `json:"additionalProperties"`
	Properties           map[string]propertySchema `json:"properties"`
	Required             []string                  `json:"required"`
}

type propertySchema struct {
	Type     string          `json:"type"`
	Items    *propertySchema `json:"items,omitempty"`
	MinItems *int            `json:"minItems,omitempty"`
	MaxItems *int            `json:"maxItems,omitempty"`
}

func suggestionListSchema() propertySchema {
	zero, three := 0, 3
	return propertySchema{
		Type:     "array",
		Items:    &propertySchema{Type: "string"},
		MinItems: &zero,
		MaxItems: &three,
	}
}

// InitialFormat constrains the first analysis response. All three fields are
// mandatory even though the suggestion array may be empty.
var InitialFormat = ResponseFormat{
	Name: "ArtworkLabelSummary",
	Schema: objectSchema{
		Type:                 "object",
		AdditionalProperties: false,
		Properties: map[string]propertySchema{
			"label_text":           {Type: "string"},
			"explanation":          {Type: "string"},
			"followup_suggestions": suggestionListSchema(),
		},
		Required: []string{"label_text", "explanation", "followup_suggestions"},
	},
}

// FollowUpFormat constrains follow-up answers.
var FollowUpFormat = ResponseFormat{
	Name: "ArtworkFollowUpAnswer",
	Schema: objectSchema{
		Type:                 "object",
		AdditionalProperties: false,
		Properties: map[string]propertySchema{
			"answer":               {Type: "string"},
			"followup_suggestions": suggestionListSchema(),
		},
		Required: []string{"answer", "followup_suggestions"},
	},
}

// Instructions renders the contract as a prompt fragment. The model must
// produce a bare JSON object, nothing else.
func (f ResponseFormat) Instructions() string {
	raw, err := json.Marshal(f.Schema)
	if err != nil {
		// Schemas are package-level constants; marshaling cannot fail.
		panic(err)
	}
	return fmt.Sprintf("Respond with a single JSON object named %s that matches this JSON schema exactly. Do not wrap it in markdown or add any other text.\nSchema: %s", f.Name, raw)
}
