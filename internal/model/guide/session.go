package guide

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CustomGuide carries the user-supplied guide persona used with ToneCustom.
type CustomGuide struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LabelResult is the outcome of one label analysis call.
type LabelResult struct {
	LabelText           string   `json:"labelText"`
	Explanation         string   `json:"explanation"`
	FollowupSuggestions []string `json:"followupSuggestions"`
}

// ChatTurn persists a single exchange entry in a session transcript.
type ChatTurn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session ties one label analysis to its follow-up conversation.
// Tone and CustomGuide are fixed at creation; History is append-only.
type Session struct {
	ID          string       `json:"id"`
	Tone        Tone         `json:"tone"`
	CustomGuide *CustomGuide `json:"customGuide,omitempty"`
	LabelResult LabelResult  `json:"labelResult"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	History     []ChatTurn   `json:"history"`
	CreatedAt   time.Time    `json:"createdAt"`
}
