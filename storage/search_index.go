package storage

import (
	"context"
	"time"

	"genchat/model"

	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// MessageMatch represents a search result within a session
type MessageMatch struct {
	SessionID    string
	SessionTitle string
	MessageID    string
	Role         model.Role
	Kind         model.Kind
	Content      string
	Preview      string
	Timestamp    time.Time
	Score        int
}

// searchable adapts succeeded, non-system messages to fuzzy.Source.
type searchable []model.Message

func (s searchable) String(i int) string { return s[i].Content }
func (s searchable) Len() int            { return len(s) }

// SearchMessages fuzzy-matches query against message contents, best first.
// System messages and unfinished records are skipped.
func SearchMessages(messages []model.Message, query string) []MessageMatch {
	if query == "" {
		return []MessageMatch{}
	}

	var candidates searchable
	for _, msg := range messages {
		if msg.Role == model.RoleSystem || msg.Status != model.StatusSucceeded {
			continue
		}
		candidates = append(candidates, msg)
	}

	results := fuzzy.FindFrom(query, candidates)
	matches := make([]MessageMatch, 0, len(results))
	for _, r := range results {
		msg := candidates[r.Index]
		matches = append(matches, MessageMatch{
			SessionID: msg.SessionID,
			MessageID: msg.ID,
			Role:      msg.Role,
			Kind:      msg.Kind,
			Content:   msg.Content,
			Preview:   runewidth.Truncate(flattenLine(msg.Content), previewWidth, "..."),
			Timestamp: msg.CreatedAt,
			Score:     r.Score,
		})
	}
	return matches
}

type SearchIndex struct {
	sessions *SessionStorage
}

func NewSearchIndex(sessions *SessionStorage) *SearchIndex {
	return &SearchIndex{sessions: sessions}
}

// SearchAllSessions runs SearchMessages over every session, grouped by
// session in recency order.
func (si *SearchIndex) SearchAllSessions(ctx context.Context, query string) ([]MessageMatch, error) {
	if query == "" {
		return []MessageMatch{}, nil
	}

	sessions, err := si.sessions.List(ctx)
	if err != nil {
		return nil, err
	}

	var matches []MessageMatch
	for _, session := range sessions {
		messages, err := si.sessions.store.QueryBySession(ctx, session.ID)
		if err != nil {
			si.sessions.store.logger.Warn("skipping session in search", "session", session.ID, "error", err)
			continue
		}

		for _, m := range SearchMessages(messages, query) {
			m.SessionTitle = session.Title
			matches = append(matches, m)
		}
	}

	return matches, nil
}
