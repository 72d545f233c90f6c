package store

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saishankar404/tidy/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser("u1")
	assert.ErrorIs(t, err, ErrNotFound)

	user, err := s.PutUser("u1", json.RawMessage(`{"theme":"dark"}`))
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.JSONEq(t, `{"theme":"dark"}`, string(user.Settings))
	assert.False(t, user.CreatedAt.IsZero())

	// Upsert replaces settings without erroring.
	user, err = s.PutUser("u1", json.RawMessage(`{"theme":"light"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light"}`, string(user.Settings))

	// Empty settings default to an empty object.
	user, err = s.PutUser("u2", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(user.Settings))

	require.NoError(t, s.DeleteUser("u1"))
	_, err = s.GetUser("u1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing user is not an error.
	assert.NoError(t, s.DeleteUser("ghost"))
}

func TestDeleteUserRemovesChatHistory(t *testing.T) {
	s := newTestStore(t)

	_, err := s.PutUser("u1", nil)
	require.NoError(t, err)
	require.NoError(t, s.AppendChatMessage("u1", "sess", model.ChatMessage{
		ID:        model.NewID(),
		Role:      model.RoleUser,
		Content:   "hello",
		Timestamp: time.Now(),
	}))

	require.NoError(t, s.DeleteUser("u1"))

	msgs, err := s.GetChatSession("u1", "sess")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestAnalysisSessions(t *testing.T) {
	s := newTestStore(t)

	type payload struct {
		Score int `json:"score"`
	}

	require.NoError(t, s.SaveAnalysis("sess-1", "u1", "a.ts", payload{Score: 80}))

	rec, err := s.GetAnalysis("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "a.ts", rec.FilePath)
	assert.JSONEq(t, `{"score":80}`, string(rec.Result))

	_, err = s.GetAnalysis("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAnalysesNewestFirst(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveAnalysis(
			// Distinct created_at values via distinct inserts; SQLite
			// second precision can collide, so order by id as a tiebreak
			// is not assumed here, only that all rows come back.
			fmt.Sprintf("sess-%d", i), "u1", fmt.Sprintf("file-%d.ts", i), map[string]int{"score": i}))
	}
	require.NoError(t, s.SaveAnalysis("other", "u2", "b.ts", map[string]int{}))

	recs, err := s.ListAnalyses("u1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, "u1", rec.UserID)
		assert.Empty(t, rec.Result, "list must not carry blobs")
	}

	limited, err := s.ListAnalyses("u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestChatTranscript(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		require.NoError(t, s.AppendChatMessage("u1", "sess", model.ChatMessage{
			ID:        model.NewID(),
			Role:      role,
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	msgs, err := s.GetChatSession("u1", "sess")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, msg := range msgs {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Content)
	}
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)

	// Other sessions stay isolated.
	other, err := s.GetChatSession("u1", "elsewhere")
	require.NoError(t, err)
	assert.Empty(t, other)
}
