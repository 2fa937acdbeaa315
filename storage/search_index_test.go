package storage

import (
	"context"
	"testing"
	"time"

	"genchat/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMessages(t *testing.T) {
	base := time.Now()
	messages := []model.Message{
		{ID: "1", Role: model.RoleUser, Content: "draw a golden retriever", Status: model.StatusSucceeded, CreatedAt: base},
		{ID: "2", Role: model.RoleAssistant, Content: "golden hour photo", Status: model.StatusFailed, CreatedAt: base},
		{ID: "3", Role: model.RoleSystem, Content: "golden rules", Status: model.StatusSucceeded, CreatedAt: base},
		{ID: "4", Role: model.RoleAssistant, Content: "unrelated", Status: model.StatusSucceeded, CreatedAt: base},
	}

	assert.Empty(t, SearchMessages(messages, ""))

	matches := SearchMessages(messages, "golden")
	require.Len(t, matches, 1)
	assert.Equal(t, "1", matches[0].MessageID)

	// fuzzy: characters in order, not contiguous
	matches = SearchMessages(messages, "gldrtr")
	require.Len(t, matches, 1)
	assert.Equal(t, "1", matches[0].MessageID)
}

func TestSearchAllSessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	ss := NewSessionStorage(store, t.TempDir())
	idx := NewSearchIndex(ss)

	a, err := ss.Create(ctx)
	require.NoError(t, err)
	b, err := ss.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, ss.Rename(ctx, b.ID, "Pets"))

	require.NoError(t, store.Append(ctx, msgAt("m1", a.ID, time.Now(), model.StatusSucceeded)))
	pet := msgAt("m2", b.ID, time.Now(), model.StatusSucceeded)
	pet.Content = "a sleepy cat on a sofa"
	require.NoError(t, store.Append(ctx, pet))

	matches, err := idx.SearchAllSessions(ctx, "sleepy cat")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, b.ID, matches[0].SessionID)
	assert.Equal(t, "Pets", matches[0].SessionTitle)

	none, err := idx.SearchAllSessions(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}
