package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artlens/guide/backend/internal/model/guide"
	"github.com/artlens/guide/backend/internal/service/session"
)

func TestCreateGetRoundTrip(t *testing.T) {
	svc := session.NewService(nil)
	ctx := context.Background()

	result := guide.LabelResult{
		LabelText:           "Mona Lisa, 1503",
		Explanation:         "A famous smiling painting.",
		FollowupSuggestions: []string{"Who painted it?"},
	}

	created, err := svc.Create(ctx, guide.ToneKids, result, nil, "")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, guide.ToneKids, got.Tone)
	assert.Equal(t, result, got.LabelResult)
	require.Len(t, got.History, 1)
	assert.Equal(t, guide.RoleAssistant, got.History[0].Role)
	assert.Equal(t, "A famous smiling painting.", got.History[0].Content)
}

func TestCreateKeepsCustomGuide(t *testing.T) {
	svc := session.NewService(nil)
	ctx := context.Background()

	custom := &guide.CustomGuide{Name: "Pirate", Description: "Talks like a pirate."}
	created, err := svc.Create(ctx, guide.ToneCustom, guide.LabelResult{Explanation: "Arr."}, custom, "")
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CustomGuide)
	assert.Equal(t, "Pirate", got.CustomGuide.Name)
}

func TestGetUnknownSession(t *testing.T) {
	svc := session.NewService(nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestAppendUnknownSessionIsNoOp(t *testing.T) {
	svc := session.NewService(nil)
	ctx := context.Background()

	svc.Append(ctx, "missing", []guide.ChatTurn{{Role: guide.RoleUser, Content: "hello"}})

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestAppendOrdersTurns(t *testing.T) {
	svc := session.NewService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, guide.ToneKids, guide.LabelResult{
		LabelText:   "Mona Lisa, 1503",
		Explanation: "A famous smiling painting.",
	}, nil, "")
	require.NoError(t, err)

	svc.Append(ctx, created.ID, []guide.ChatTurn{
		{Role: guide.RoleUser, Content: "Why is she smiling?"},
		{Role: guide.RoleAssistant, Content: "No one truly knows!"},
	})

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 3)
	assert.Equal(t, "A famous smiling painting.", got.History[0].Content)
	assert.Equal(t, "Why is she smiling?", got.History[1].Content)
	assert.Equal(t, "No one truly knows!", got.History[2].Content)
	assert.Equal(t, guide.RoleUser, got.History[1].Role)
	assert.Equal(t, guide.RoleAssistant, got.History[2].Role)
}

func TestReplaceSuggestions(t *testing.T) {
	svc := session.NewService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, guide.ToneGeneral, guide.LabelResult{
		Explanation:         "A painting.",
		FollowupSuggestions: []string{"old one", "old two"},
	}, nil, "")
	require.NoError(t, err)

	svc.ReplaceSuggestions(ctx, created.ID, []string{"new one"})

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"new one"}, got.LabelResult.FollowupSuggestions)
}

type fakeDurable struct {
	snapshot *session.Snapshot
	err      error
	calls    int
}

func (f *fakeDurable) FetchSessionWithHistory(_ context.Context, _ string) (*session.Snapshot, error) {
	f.calls++
	return f.snapshot, f.err
}

func TestGetHydratesFromDurableStore(t *testing.T) {
	durable := &fakeDurable{
		snapshot: &session.Snapshot{
			Tone: guide.ToneExpert,
			LabelResult: guide.LabelResult{
				LabelText:           "Starry Night, 1889",
				Explanation:         "Swirling skies over a village.",
				FollowupSuggestions: []string{},
			},
			History: []guide.ChatTurn{
				{Role: guide.RoleUser, Content: "Where was it painted?"},
				{Role: guide.RoleAssistant, Content: "In an asylum in Saint-Remy."},
			},
		},
	}
	svc := session.NewService(durable)
	ctx := context.Background()

	got, err := svc.Get(ctx, "persisted-id")
	require.NoError(t, err)
	assert.Equal(t, guide.ToneExpert, got.Tone)
	assert.Equal(t, "Starry Night, 1889", got.LabelResult.LabelText)
	require.Len(t, got.History, 2)

	// Hydrated entry is cached: a second read must not hit the durable store.
	_, err = svc.Get(ctx, "persisted-id")
	require.NoError(t, err)
	assert.Equal(t, 1, durable.calls)
}

func TestGetHydrationSynthesizesInitialTurn(t *testing.T) {
	durable := &fakeDurable{
		snapshot: &session.Snapshot{
			Tone:        guide.ToneGeneral,
			LabelResult: guide.LabelResult{Explanation: "A bronze sculpture."},
		},
	}
	svc := session.NewService(durable)

	got, err := svc.Get(context.Background(), "persisted-id")
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	assert.Equal(t, guide.RoleAssistant, got.History[0].Role)
	assert.Equal(t, "A bronze sculpture.", got.History[0].Content)
}

func TestGetDurableErrorMapsToNotFound(t *testing.T) {
	durable := &fakeDurable{err: errors.New("connection refused")}
	svc := session.NewService(durable)

	_, err := svc.Get(context.Background(), "any")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}
