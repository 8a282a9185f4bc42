package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artlens/guide/backend/internal/model/guide"
	"github.com/artlens/guide/backend/internal/service/session"
)

// PGStore mirrors session state to Postgres. It is a best-effort secondary
// copy: the in-memory store stays authoritative for a running process.
type PGStore struct {
	db *pgxpool.Pool
}

// New wraps an existing connection pool.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// EnsureSchema creates the session tables when they do not exist yet.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			id                 TEXT PRIMARY KEY,
			tone               TEXT NOT NULL,
			image_url          TEXT,
			label_text         TEXT,
			explanation        TEXT,
			custom_name        TEXT,
			custom_description TEXT,
			created_at         TIMESTAMPTZ DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS interactions (
			id         SERIAL PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}

// RecordSession upserts the session row.
func (s *PGStore) RecordSession(ctx context.Context, sess guide.Session) error {
	var customName, customDescription *string
	if sess.CustomGuide != nil {
		customName = &sess.CustomGuide.Name
		customDescription = &sess.CustomGuide.Description
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO sessions (id, tone, image_url, label_text, explanation, custom_name, custom_description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id)
		 DO UPDATE SET
			tone = EXCLUDED.tone,
			image_url = EXCLUDED.image_url,
			label_text = EXCLUDED.label_text,
			explanation = EXCLUDED.explanation,
			custom_name = EXCLUDED.custom_name,
			custom_description = EXCLUDED.custom_description,
			created_at = NOW()`,
		sess.ID, string(sess.Tone), nullable(sess.ImageURL), sess.LabelResult.LabelText,
		sess.LabelResult.Explanation, customName, customDescription,
	)
	if err != nil {
		return fmt.Errorf("store: record session: %w", err)
	}
	return nil
}

// RecordInteraction appends a chat turn to the interaction log.
func (s *PGStore) RecordInteraction(ctx context.Context, sessionID, role, content string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO interactions (session_id, role, content) VALUES ($1, $2, $3)`,
		sessionID, role, content,
	)
	if err != nil {
		return fmt.Errorf("store: record interaction: %w", err)
	}
	return nil
}

// FetchSessionWithHistory rebuilds a session snapshot from the persisted
// rows. A missing session returns (nil, nil).
func (s *PGStore) FetchSessionWithHistory(ctx context.Context, sessionID string) (*session.Snapshot, error) {
	var (
		tone              string
		imageURL          *string
		labelText         *string
		explanation       *string
		customName        *string
		customDescription *string
	)

	err := s.db.QueryRow(ctx,
		`SELECT tone, image_url, label_text, explanation, custom_name, custom_description
		 FROM sessions WHERE id = $1 LIMIT 1`,
		sessionID,
	).Scan(&tone, &imageURL, &labelText, &explanation, &customName, &customDescription)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: fetch session: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, role, content, created_at
		 FROM interactions
		 WHERE session_id = $1
		 ORDER BY created_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: fetch interactions: %w", err)
	}
	defer rows.Close()

	var history []guide.ChatTurn
	for rows.Next() {
		var (
			rowID     int64
			role      string
			content   string
			createdAt time.Time
		)
		if err := rows.Scan(&rowID, &role, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan interaction: %w", err)
		}

		if role != guide.RoleAssistant {
			role = guide.RoleUser
		}
		history = append(history, guide.ChatTurn{
			ID:        fmt.Sprintf("%s-%d", sessionID, rowID),
			Role:      role,
			Content:   content,
			CreatedAt: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: fetch interactions: %w", err)
	}

	snapshot := &session.Snapshot{
		Tone: guide.Tone(tone),
		LabelResult: guide.LabelResult{
			LabelText:           deref(labelText),
			Explanation:         deref(explanation),
			FollowupSuggestions: []string{},
		},
		ImageURL: deref(imageURL),
		History:  history,
	}
	if customName != nil && customDescription != nil {
		snapshot.CustomGuide = &guide.CustomGuide{Name: *customName, Description: *customDescription}
	}

	return snapshot, nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

var _ session.DurableStore = (*PGStore)(nil)
