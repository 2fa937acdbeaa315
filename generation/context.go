package generation

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"genchat/model"

	"github.com/mattn/go-runewidth"
)

// ContextBuilder derives the bounded prompt context of a session from the
// store. It never writes.
type ContextBuilder struct {
	store        model.MessageStore
	systemPrompt string
	window       int
	summaryWidth int
}

func NewContextBuilder(store model.MessageStore, systemPrompt string, window, summaryWidth int) *ContextBuilder {
	return &ContextBuilder{
		store:        store,
		systemPrompt: systemPrompt,
		window:       window,
		summaryWidth: summaryWidth,
	}
}

// SelectContext keeps succeeded messages, orders them by CreatedAt and
// returns the most recent window of them, oldest first. The input is not
// modified. A window <= 0 keeps everything.
func SelectContext(messages []model.Message, window int) []model.Message {
	kept := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		if m.Status == model.StatusSucceeded {
			kept = append(kept, m)
		}
	}
	slices.SortStableFunc(kept, func(a, b model.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if window > 0 && len(kept) > window {
		kept = kept[len(kept)-window:]
	}
	return kept
}

// ContextTurns returns the chat turns for messages: the system turn first,
// then the selected history. The sequence is lazy and can be ranged over any
// number of times; each pass re-derives the same turns from a private copy.
func ContextTurns(systemPrompt string, messages []model.Message, window int) iter.Seq[model.ChatTurn] {
	snapshot := slices.Clone(messages)
	return func(yield func(model.ChatTurn) bool) {
		if systemPrompt != "" {
			if !yield(model.ChatTurn{Role: model.RoleSystem, Content: systemPrompt}) {
				return
			}
		}
		for _, m := range SelectContext(snapshot, window) {
			if !yield(model.ChatTurn{Role: m.Role, Content: m.Content}) {
				return
			}
		}
	}
}

// History returns the context window of a session.
func (b *ContextBuilder) History(ctx context.Context, sessionID string) ([]model.Message, error) {
	messages, err := b.store.QueryBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return SelectContext(messages, b.window), nil
}

// Turns loads the session once and returns its context as a sequence.
func (b *ContextBuilder) Turns(ctx context.Context, sessionID string) (iter.Seq[model.ChatTurn], error) {
	messages, err := b.store.QueryBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return ContextTurns(b.systemPrompt, messages, b.window), nil
}

// Summary renders the text turns of the context window as "role:content"
// pairs, bounded to the configured display width. excludeID drops one
// message, typically the user turn that is being answered.
func (b *ContextBuilder) Summary(ctx context.Context, sessionID, excludeID string) (string, error) {
	history, err := b.History(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return summarize(history, excludeID, b.summaryWidth), nil
}

func summarize(history []model.Message, excludeID string, width int) string {
	parts := make([]string, 0, len(history))
	for _, m := range history {
		if m.ID == excludeID || m.Kind != model.KindText {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s", m.Role, strings.Join(strings.Fields(m.Content), " ")))
	}
	summary := strings.Join(parts, ", ")
	if width > 0 {
		summary = runewidth.Truncate(summary, width, "...")
	}
	return summary
}

// augmentPrompt prefixes prompt with the history summary, if any.
func augmentPrompt(summary, noun, prompt string) string {
	if summary == "" {
		return prompt
	}
	return fmt.Sprintf("Based on history: %s, generate %s: %s", summary, noun, prompt)
}
