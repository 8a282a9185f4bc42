package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/artlens/guide/backend/internal/model/guide"
)

var (
	ErrCustomNameRequired        = errors.New("custom guide name is required")
	ErrCustomDescriptionRequired = errors.New("custom guide description is required")
)

var toneDescriptions = map[guide.Tone]string{
	guide.ToneKids:    "Speak to a child around 10 years old. Be playful and use clear, short sentences.",
	guide.ToneGeneral: "Explain in plain English for a general adult audience. Avoid jargon and stay concise.",
	guide.ToneCurious: "Talk to a curious visitor. Offer plain-language insights, analogies, and cultural context.",
	guide.ToneExpert:  "Address an art history enthusiast. Maintain clarity while respecting nuance and terminology.",
}

const initialSystemPrompt = `You are a friendly museum guide helping visitors understand artwork labels.

Return a JSON object with keys:
- label_text: the exact text you can read from the label.
- explanation: a simplified explanation tailored to the requested audience.
- followup_suggestions: an array of up to 3 short follow-up question suggestions.

If the label text is unclear or missing, set label_text to an empty string and explain briefly why.`

const followUpSystemPrompt = `You are still the same museum guide. Keep answers grounded in the original label text and previous discussion.
If unsure, say so rather than inventing details.`

// ValidateCustomGuide checks that a custom tone carries a usable descriptor.
// Non-custom tones never require one.
func ValidateCustomGuide(tone guide.Tone, custom *guide.CustomGuide) error {
	if tone != guide.ToneCustom {
		return nil
	}
	if custom == nil || strings.TrimSpace(custom.Name) == "" {
		return ErrCustomNameRequired
	}
	if strings.TrimSpace(custom.Description) == "" {
		return ErrCustomDescriptionRequired
	}
	return nil
}

// audienceProfile resolves the tone to its canned description, substituting
// the caller-supplied persona for the custom tone.
func audienceProfile(tone guide.Tone, custom *guide.CustomGuide) string {
	if tone == guide.ToneCustom && custom != nil {
		return fmt.Sprintf("You are a guide called %q. %s", strings.TrimSpace(custom.Name), strings.TrimSpace(custom.Description))
	}
	return toneDescriptions[tone]
}

// BuildInitialPrompt renders the user prompt for the first label analysis.
func BuildInitialPrompt(tone guide.Tone, custom *guide.CustomGuide) string {
	return fmt.Sprintf(`Audience profile: %s.

Tasks:
1. Transcribe the label text verbatim.
2. Summarize the artwork in the requested voice.
3. Offer 2-3 follow-up questions the visitor might ask next.`, audienceProfile(tone, custom))
}

// BuildFollowUpPrompt renders the user prompt for a follow-up question,
// replaying the label text, the prior explanation and the transcript so far.
func BuildFollowUpPrompt(tone guide.Tone, custom *guide.CustomGuide, labelText string, history []guide.ChatTurn, question, explanation string) string {
	var formatted strings.Builder
	for i, turn := range history {
		speaker := "Visitor"
		if turn.Role == guide.RoleAssistant {
			speaker = "Guide"
		}
		if i > 0 {
			formatted.WriteString("\n")
		}
		formatted.WriteString(speaker)
		formatted.WriteString(": ")
		formatted.WriteString(turn.Content)
	}

	transcript := formatted.String()
	if transcript == "" {
		transcript = "(no follow-up questions yet)"
	}

	if labelText == "" {
		labelText = "N/A"
	}

	priorExplanation := ""
	if explanation != "" {
		priorExplanation = fmt.Sprintf("Guide's earlier explanation:\n\"\"\"%s\"\"\"\n\n", explanation)
	}

	return fmt.Sprintf(`Audience profile: %s

Original label text:
"""%s"""

%sConversation so far:
%s

Visitor now asks: %s`, audienceProfile(tone, custom), labelText, priorExplanation, transcript, question)
}
