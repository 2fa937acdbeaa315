package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"genchat/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenPath(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func msgAt(id, session string, at time.Time, status model.Status) model.Message {
	return model.Message{
		ID:        id,
		SessionID: session,
		Role:      model.RoleUser,
		Kind:      model.KindText,
		Content:   "content " + id,
		Status:    status,
		CreatedAt: at,
	}
}

func TestAppendUpsertsByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Now()

	pending := msgAt("a", "s1", base, model.StatusPending)
	pending.Role = model.RoleAssistant
	require.NoError(t, s.Append(ctx, pending))

	done := pending
	done.Status = model.StatusSucceeded
	done.Content = "final"
	done.Prompt = "hi"
	require.NoError(t, s.Append(ctx, done))

	got, err := s.QueryBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.StatusSucceeded, got[0].Status)
	assert.Equal(t, "final", got[0].Content)
	assert.Equal(t, "hi", got[0].Prompt)
	assert.Equal(t, base.UnixNano(), got[0].CreatedAt.UnixNano())
}

func TestQueryBySessionOrderAndPartition(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Now()

	require.NoError(t, s.Append(ctx, msgAt("c", "s1", base.Add(2*time.Second), model.StatusSucceeded)))
	require.NoError(t, s.Append(ctx, msgAt("a", "s1", base, model.StatusSucceeded)))
	require.NoError(t, s.Append(ctx, msgAt("b", "s1", base.Add(time.Second), model.StatusFailed)))
	require.NoError(t, s.Append(ctx, msgAt("x", "s2", base, model.StatusSucceeded)))

	got, err := s.QueryBySession(ctx, "s1")
	require.NoError(t, err)
	ids := []string{}
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	other, err := s.QueryBySession(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	empty, err := s.QueryBySession(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAppendRejectsMissingKeys(t *testing.T) {
	s := newTestStore(t)
	err := s.Append(context.Background(), model.Message{ID: "a"})
	assert.Error(t, err)
}

func TestDeleteAndClearAreIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Now()

	require.NoError(t, s.Append(ctx, msgAt("a", "s1", base, model.StatusSucceeded)))
	require.NoError(t, s.Append(ctx, msgAt("b", "s1", base.Add(time.Millisecond), model.StatusSucceeded)))

	require.NoError(t, s.DeleteByID(ctx, "a"))
	require.NoError(t, s.DeleteByID(ctx, "a"))

	got, err := s.QueryBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	require.NoError(t, s.ClearSession(ctx, "s1"))
	require.NoError(t, s.ClearSession(ctx, "s1"))

	got, err = s.QueryBySession(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSubscribeDeliversLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Now()

	ch, cancel := s.Subscribe("s1")
	defer cancel()

	require.NoError(t, s.Append(ctx, msgAt("a", "s1", base, model.StatusSucceeded)))
	require.NoError(t, s.Append(ctx, msgAt("b", "s1", base.Add(time.Millisecond), model.StatusSucceeded)))
	// other sessions do not wake this subscriber
	require.NoError(t, s.Append(ctx, msgAt("x", "s2", base, model.StatusSucceeded)))

	select {
	case snap := <-ch:
		assert.Len(t, snap, 2)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	select {
	case snap := <-ch:
		t.Fatalf("unexpected extra snapshot: %v", snap)
	default:
	}

	require.NoError(t, s.ClearSession(ctx, "s1"))
	snap := <-ch
	assert.Empty(t, snap)

	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestMigrateSchemaIsRepeatable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "m.db")
	s, err := OpenPath(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenPath(dbPath, nil)
	require.NoError(t, err)
	defer s.Close()

	ok, err := s.columnExists("messages", "reference")
	require.NoError(t, err)
	assert.True(t, ok)
}
