package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/artlens/guide/backend/internal/model/guide"
)

var ErrSessionNotFound = errors.New("session not found")

// Snapshot is the durable store's view of a session, used to rebuild the
// in-memory entry on a cache miss.
type Snapshot struct {
	Tone        guide.Tone
	ImageURL    string
	LabelResult guide.LabelResult
	CustomGuide *guide.CustomGuide
	History     []guide.ChatTurn
}

// DurableStore is consulted on read-miss. A nil *Snapshot with a nil error
// means the session is unknown to the durable store as well.
type DurableStore interface {
	FetchSessionWithHistory(ctx context.Context, sessionID string) (*Snapshot, error)
}

// Service owns session and chat-turn lifetimes for the process.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*guide.Session
	durable  DurableStore
}

// NewService bootstraps the in-memory session store. durable may be nil.
func NewService(durable DurableStore) *Service {
	return &Service{
		sessions: make(map[string]*guide.Session),
		durable:  durable,
	}
}

// Create allocates a session and seeds its history with the assistant's
// initial explanation. Tone and custom guide are fixed for the session's
// lifetime.
func (s *Service) Create(_ context.Context, tone guide.Tone, result guide.LabelResult, custom *guide.CustomGuide, imageURL string) (guide.Session, error) {
	if !tone.Valid() {
		return guide.Session{}, fmt.Errorf("invalid tone %q", tone)
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	session := &guide.Session{
		ID:          id,
		Tone:        tone,
		CustomGuide: cloneCustomGuide(custom),
		LabelResult: cloneResult(result),
		ImageURL:    imageURL,
		History: []guide.ChatTurn{
			{
				ID:        id + "-assistant-initial",
				Role:      guide.RoleAssistant,
				Content:   result.Explanation,
				CreatedAt: now,
			},
		},
		CreatedAt: now,
	}

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	return copySession(session), nil
}

// Get retrieves a session by identifier, hydrating from the durable store
// on a miss when one is configured.
func (s *Service) Get(ctx context.Context, sessionID string) (guide.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return copySession(session), nil
	}

	if s.durable == nil {
		return guide.Session{}, ErrSessionNotFound
	}

	snapshot, err := s.durable.FetchSessionWithHistory(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("durable session lookup failed")
		return guide.Session{}, ErrSessionNotFound
	}
	if snapshot == nil {
		return guide.Session{}, ErrSessionNotFound
	}

	hydrated := sessionFromSnapshot(sessionID, snapshot)

	s.mu.Lock()
	// A concurrent request may have hydrated the same id already.
	if existing, ok := s.sessions[sessionID]; ok {
		hydrated = existing
	} else {
		s.sessions[sessionID] = hydrated
	}
	s.mu.Unlock()

	return copySession(hydrated), nil
}

// Append adds turns to a session's history in order. Unknown sessions are
// dropped silently: the caller has already produced a response to return,
// so a vanished session is not treated as a failure here.
func (s *Service) Append(_ context.Context, sessionID string, turns []guide.ChatTurn) {
	if len(turns) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}

	now := time.Now().UTC()
	for i, turn := range turns {
		if turn.ID == "" {
			turn.ID = fmt.Sprintf("%s-%s-%d", sessionID, turn.Role, len(session.History)+i)
		}
		if turn.CreatedAt.IsZero() {
			turn.CreatedAt = now
		}
		session.History = append(session.History, turn)
	}
}

// ReplaceSuggestions swaps the session's follow-up suggestion list. Each
// follow-up exchange replaces, never merges, the previous suggestions.
func (s *Service) ReplaceSuggestions(_ context.Context, sessionID string, suggestions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	session.LabelResult.FollowupSuggestions = append([]string(nil), suggestions...)
}

func sessionFromSnapshot(sessionID string, snapshot *Snapshot) *guide.Session {
	history := append([]guide.ChatTurn(nil), snapshot.History...)
	if len(history) == 0 {
		// No interactions were persisted; rebuild the seed turn so prompts
		// always render at least the guide's opening explanation.
		history = []guide.ChatTurn{
			{
				ID:        sessionID + "-assistant-initial",
				Role:      guide.RoleAssistant,
				Content:   snapshot.LabelResult.Explanation,
				CreatedAt: time.Now().UTC(),
			},
		}
	}

	return &guide.Session{
		ID:          sessionID,
		Tone:        snapshot.Tone,
		CustomGuide: cloneCustomGuide(snapshot.CustomGuide),
		LabelResult: cloneResult(snapshot.LabelResult),
		ImageURL:    snapshot.ImageURL,
		History:     history,
		CreatedAt:   time.Now().UTC(),
	}
}

func copySession(session *guide.Session) guide.Session {
	copied := *session
	copied.CustomGuide = cloneCustomGuide(session.CustomGuide)
	copied.LabelResult = cloneResult(session.LabelResult)
	copied.History = append([]guide.ChatTurn(nil), session.History...)
	return copied
}

func cloneCustomGuide(custom *guide.CustomGuide) *guide.CustomGuide {
	if custom == nil {
		return nil
	}
	copied := *custom
	return &copied
}

func cloneResult(result guide.LabelResult) guide.LabelResult {
	result.FollowupSuggestions = append([]string(nil), result.FollowupSuggestions...)
	return result
}
