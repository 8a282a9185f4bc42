package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/artlens/guide/backend/internal/config"
	"github.com/artlens/guide/backend/internal/model/guide"
)

// ErrBadModelPayload marks responses that could not be parsed against the
// structured-output contract. Callers surface it as a retryable upstream
// error, distinct from caller mistakes.
var ErrBadModelPayload = errors.New("model returned an unparsable payload")

// The follow-up call runs warmer than the analysis call to keep the
// conversational voice lively.
const followUpTemperature float32 = 0.8

// FollowUpResult is the outcome of one follow-up exchange.
type FollowUpResult struct {
	Answer              string   `json:"answer"`
	FollowupSuggestions []string `json:"followupSuggestions"`
}

// Service wraps the vision chat model behind the two guide operations.
type Service struct {
	chatModel model.ChatModel
}

// NewService creates the AI service from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return &Service{chatModel: chatModel}, nil
}

type initialPayload struct {
	LabelText           string   `json:"label_text"`
	Explanation         string   `json:"explanation"`
	FollowupSuggestions []string `json:"followup_suggestions"`
}

type followUpPayload struct {
	Answer              string   `json:"answer"`
	FollowupSuggestions []string `json:"followup_suggestions"`
}

// AnalyzeLabel sends the label photo plus the audience-tailored prompt to
// the model and returns the parsed, defaulted result.
func (s *Service) AnalyzeLabel(ctx context.Context, tone guide.Tone, custom *guide.CustomGuide, imageDataURL string) (guide.LabelResult, error) {
	messages := []*schema.Message{
		schema.SystemMessage(initialSystemPrompt + "\n\n" + InitialFormat.Instructions()),
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{
					Type: schema.ChatMessagePartTypeText,
					Text: BuildInitialPrompt(tone, custom),
				},
				{
					Type:     schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{URL: imageDataURL},
				},
			},
		},
	}

	response, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return guide.LabelResult{}, fmt.Errorf("analyze label: %w", err)
	}

	payload := ParseStructured[initialPayload](ExtractContent(response))
	if payload == nil {
		return guide.LabelResult{}, ErrBadModelPayload
	}

	result := guide.LabelResult{
		LabelText:           strings.TrimSpace(payload.LabelText),
		Explanation:         strings.TrimSpace(payload.Explanation),
		FollowupSuggestions: cleanSuggestions(payload.FollowupSuggestions),
	}

	log.Info().Str("tone", string(tone)).Int("explanation_len", len(result.Explanation)).Msg("label analyzed")
	return result, nil
}

// AnswerFollowUp continues the session's conversation with a new visitor
// question.
func (s *Service) AnswerFollowUp(ctx context.Context, session guide.Session, question string) (FollowUpResult, error) {
	userPrompt := BuildFollowUpPrompt(
		session.Tone,
		session.CustomGuide,
		session.LabelResult.LabelText,
		session.History,
		question,
		session.LabelResult.Explanation,
	)

	messages := []*schema.Message{
		schema.SystemMessage(followUpSystemPrompt + "\n\n" + FollowUpFormat.Instructions()),
		schema.UserMessage(userPrompt),
	}

	response, err := s.chatModel.Generate(ctx, messages, model.WithTemperature(followUpTemperature))
	if err != nil {
		return FollowUpResult{}, fmt.Errorf("answer follow-up: %w", err)
	}

	payload := ParseStructured[followUpPayload](ExtractContent(response))
	if payload == nil {
		return FollowUpResult{}, ErrBadModelPayload
	}

	result := FollowUpResult{
		Answer:              strings.TrimSpace(payload.Answer),
		FollowupSuggestions: cleanSuggestions(payload.FollowupSuggestions),
	}

	log.Info().Str("session", session.ID).Int("answer_len", len(result.Answer)).Msg("follow-up answered")
	return result, nil
}
