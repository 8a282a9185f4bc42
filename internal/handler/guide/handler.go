package guide

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	aiService "github.com/artlens/guide/backend/internal/service/ai"
	sessionService "github.com/artlens/guide/backend/internal/service/session"

	"github.com/artlens/guide/backend/internal/model/guide"
	"github.com/artlens/guide/backend/pkg/utils"
)

const (
	genericErrorMessage  = "Something went wrong while talking to the museum guide."
	parseErrorMessage    = "Unable to parse the model's response. Please try again."
	notFoundErrorMessage = "Session not found. Please rescan the label."
)

// Analyzer is the slice of the AI service the handlers consume.
type Analyzer interface {
	AnalyzeLabel(ctx context.Context, tone guide.Tone, custom *guide.CustomGuide, imageDataURL string) (guide.LabelResult, error)
	AnswerFollowUp(ctx context.Context, session guide.Session, question string) (aiService.FollowUpResult, error)
}

// Recorder mirrors session state to durable storage. Both calls are
// best-effort: the handlers log failures and keep serving.
type Recorder interface {
	RecordSession(ctx context.Context, session guide.Session) error
	RecordInteraction(ctx context.Context, sessionID, role, content string) error
}

// Uploader publishes the label photo and returns its public URL.
type Uploader interface {
	UploadDataURL(ctx context.Context, dataURL, keyPrefix string) (string, error)
}

// Handler serves the two guide operations.
type Handler struct {
	analyzer Analyzer
	sessions *sessionService.Service
	uploader Uploader
	recorder Recorder
}

// New creates the guide handler. uploader and recorder may be nil when the
// corresponding collaborator is not configured.
func New(analyzer Analyzer, sessions *sessionService.Service, uploader Uploader, recorder Recorder) *Handler {
	return &Handler{
		analyzer: analyzer,
		sessions: sessions,
		uploader: uploader,
		recorder: recorder,
	}
}

// RegisterRoutes mounts the guide endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/guide", func(r chi.Router) {
		r.Post("/analyze", h.handleAnalyze)
		r.Post("/follow-up", h.handleFollowUp)
	})
}

type customGuidePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type analyzeRequest struct {
	Tone        string              `json:"tone"`
	ImageBase64 string              `json:"imageBase64"`
	CustomGuide *customGuidePayload `json:"customGuide"`
}

type analyzeResponse struct {
	SessionID string            `json:"sessionId"`
	Result    guide.LabelResult `json:"result"`
	ImageURL  string            `json:"imageUrl,omitempty"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "model unavailable")
		return
	}

	var payload analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tone := guide.Tone(payload.Tone)
	if !tone.Valid() {
		utils.RespondError(w, http.StatusBadRequest, "tone must be one of: kids, general, curious, expert, custom")
		return
	}

	if !strings.HasPrefix(payload.ImageBase64, "data:image/") {
		utils.RespondError(w, http.StatusBadRequest, "imageBase64 must be a base64-encoded image data URL")
		return
	}

	custom := customGuideFromPayload(tone, payload.CustomGuide)
	if err := aiService.ValidateCustomGuide(tone, custom); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	result, err := h.analyzer.AnalyzeLabel(ctx, tone, custom, payload.ImageBase64)
	if err != nil {
		if errors.Is(err, aiService.ErrBadModelPayload) {
			utils.RespondError(w, http.StatusBadGateway, parseErrorMessage)
			return
		}
		log.Error().Err(err).Msg("analyze request failed")
		utils.RespondError(w, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	imageURL := h.uploadImage(ctx, payload.ImageBase64)

	session, err := h.sessions.Create(ctx, tone, result, custom, imageURL)
	if err != nil {
		log.Error().Err(err).Msg("session create failed")
		utils.RespondError(w, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	if h.recorder != nil {
		if err := h.recorder.RecordSession(ctx, session); err != nil {
			log.Warn().Err(err).Str("session", session.ID).Msg("durable session write failed")
		}
	}

	utils.RespondJSON(w, http.StatusOK, analyzeResponse{
		SessionID: session.ID,
		Result:    result,
		ImageURL:  imageURL,
	})
}

type followUpRequest struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
	// Accepted for wire compatibility; the session's descriptor is immutable
	// so the field is ignored.
	CustomGuide *customGuidePayload `json:"customGuide"`
}

type followUpResponse struct {
	Answer              string   `json:"answer"`
	FollowupSuggestions []string `json:"followupSuggestions"`
}

func (h *Handler) handleFollowUp(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "model unavailable")
		return
	}

	var payload followUpRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	question := strings.TrimSpace(payload.Question)
	if question == "" {
		utils.RespondError(w, http.StatusBadRequest, "question is required")
		return
	}

	ctx := r.Context()
	session, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessionService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, notFoundErrorMessage)
			return
		}
		log.Error().Err(err).Str("session", sessionID).Msg("session lookup failed")
		utils.RespondError(w, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	result, err := h.analyzer.AnswerFollowUp(ctx, session, question)
	if err != nil {
		if errors.Is(err, aiService.ErrBadModelPayload) {
			utils.RespondError(w, http.StatusBadGateway, parseErrorMessage)
			return
		}
		log.Error().Err(err).Str("session", sessionID).Msg("follow-up request failed")
		utils.RespondError(w, http.StatusInternalServerError, genericErrorMessage)
		return
	}

	h.sessions.Append(ctx, sessionID, []guide.ChatTurn{
		{Role: guide.RoleUser, Content: question},
		{Role: guide.RoleAssistant, Content: result.Answer},
	})
	h.sessions.ReplaceSuggestions(ctx, sessionID, result.FollowupSuggestions)

	if h.recorder != nil {
		if err := h.recorder.RecordInteraction(ctx, sessionID, guide.RoleUser, question); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("durable interaction write failed")
		}
		if err := h.recorder.RecordInteraction(ctx, sessionID, guide.RoleAssistant, result.Answer); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("durable interaction write failed")
		}
	}

	utils.RespondJSON(w, http.StatusOK, followUpResponse{
		Answer:              result.Answer,
		FollowupSuggestions: result.FollowupSuggestions,
	})
}

// uploadImage publishes the label photo if an uploader is configured.
// Failures degrade to an empty URL rather than failing the request.
func (h *Handler) uploadImage(ctx context.Context, dataURL string) string {
	if h.uploader == nil {
		return ""
	}

	url, err := h.uploader.UploadDataURL(ctx, dataURL, "labels")
	if err != nil {
		log.Warn().Err(err).Msg("image upload failed")
		return ""
	}
	return url
}

func customGuideFromPayload(tone guide.Tone, payload *customGuidePayload) *guide.CustomGuide {
	if tone != guide.ToneCustom || payload == nil {
		return nil
	}
	return &guide.CustomGuide{
		Name:        strings.TrimSpace(payload.Name),
		Description: strings.TrimSpace(payload.Description),
	}
}
