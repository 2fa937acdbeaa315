package ui

import (
	"strings"
	"testing"
	"time"

	"genchat/model"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestRenderConversation(t *testing.T) {
	now := time.Now()
	msgs := []model.Message{
		{ID: "1", Role: model.RoleUser, Kind: model.KindText, Content: "draw a fox", Status: model.StatusSucceeded, CreatedAt: now},
		{ID: "2", Role: model.RoleAssistant, Kind: model.KindImage, Content: "file:///data/media/fox.png", Status: model.StatusSucceeded, CreatedAt: now},
		{ID: "3", Role: model.RoleAssistant, Kind: model.KindVideo, Content: "Generating video", Status: model.StatusPending, CreatedAt: now},
		{ID: "4", Role: model.RoleAssistant, Kind: model.KindText, Content: "Message failed to send", Status: model.StatusFailed, CreatedAt: now},
		{ID: "5", Role: model.RoleAssistant, Kind: model.KindText, Content: "plain answer", Status: model.StatusSucceeded, CreatedAt: now},
	}

	out := renderConversation(msgs, renderOptions{
		width:      80,
		spinner:    "*",
		rendered:   map[string]string{},
		staleAfter: time.Hour,
		now:        now,
	})

	assert.Contains(t, out, "draw a fox")
	assert.Contains(t, out, "/data/media/fox.png")
	assert.NotContains(t, out, "file://")
	assert.Contains(t, out, "* Generating video")
	assert.Contains(t, out, "Message failed to send")
	assert.Contains(t, out, "/retry")
	assert.Contains(t, out, "plain answer")
	assert.Contains(t, out, "5 [")
}

func TestRenderConversationEmpty(t *testing.T) {
	out := renderConversation(nil, renderOptions{width: 80})
	assert.Contains(t, out, "No messages yet")
}

func TestMessageBodyStalePending(t *testing.T) {
	now := time.Now()
	m := model.Message{ID: "p", Role: model.RoleAssistant, Kind: model.KindVideo, Content: "Generating", Status: model.StatusPending, CreatedAt: now.Add(-2 * time.Hour)}

	body := messageBody(m, renderOptions{staleAfter: time.Hour, now: now})
	assert.Contains(t, body, "No result after 1h0m0s")

	fresh := messageBody(m, renderOptions{staleAfter: 0, now: now, spinner: "*"})
	assert.Contains(t, fresh, "* Generating")
}

func TestMessageBodyPrefersRenderedMarkdown(t *testing.T) {
	m := model.Message{ID: "a", Role: model.RoleAssistant, Kind: model.KindText, Content: "**bold**", Status: model.StatusSucceeded}

	assert.Equal(t, "**bold**", messageBody(m, renderOptions{rendered: map[string]string{"a": ""}}))
	assert.Equal(t, "BOLD", messageBody(m, renderOptions{rendered: map[string]string{"a": "BOLD"}}))
}

func TestNeedsMarkdown(t *testing.T) {
	base := model.Message{Role: model.RoleAssistant, Kind: model.KindText, Status: model.StatusSucceeded}
	assert.True(t, needsMarkdown(base))

	pending := base
	pending.Status = model.StatusPending
	assert.False(t, needsMarkdown(pending))

	image := base
	image.Kind = model.KindImage
	assert.False(t, needsMarkdown(image))

	user := base
	user.Role = model.RoleUser
	assert.False(t, needsMarkdown(user))
}

func TestFormatUserMessageWraps(t *testing.T) {
	out := formatUserMessage(strings.Repeat("a", 50)+"\nsecond", 30)
	lines := strings.Split(out, "\n")
	// 26 columns per line at width 30
	assert.Len(t, lines, 3)
	for _, l := range lines {
		assert.Contains(t, l, "┃")
	}
	assert.True(t, strings.HasSuffix(lines[2], "second"))
}

func TestFormatUserMessageWrapsWideRunes(t *testing.T) {
	content := strings.Repeat("狐", 20)
	out := formatUserMessage(content, 30)
	lines := strings.Split(out, "\n")
	// two columns per rune: 13 runes fill the 26 columns
	assert.Len(t, lines, 2)

	bar := UserStyle.Render("┃") + " "
	var joined strings.Builder
	for _, l := range lines {
		text, ok := strings.CutPrefix(l, bar)
		assert.True(t, ok)
		assert.LessOrEqual(t, runewidth.StringWidth(text), 26)
		joined.WriteString(text)
	}
	assert.Equal(t, content, joined.String())
}

func TestRenderMarkdown(t *testing.T) {
	out := renderMarkdown("# Title\n\nSome *text* and a [link](https://example.com).", 80)
	lower := strings.ToLower(out)
	assert.Contains(t, lower, "title")
	assert.Contains(t, lower, "text")
	assert.Contains(t, lower, "link")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestFixMarkdownLinks(t *testing.T) {
	out := fixMarkdownLinks("see [docs](https://example.com/a)")
	assert.Contains(t, out, "docs (")
	assert.Contains(t, out, "\x1b[4mhttps://example.com/a")
}

func TestFixInlineCode(t *testing.T) {
	assert.Equal(t, "\x1b[36mx := 1\x1b[0m", fixInlineCode("\x1b[44;3mx := 1\x1b[0m"))
}

func TestFormatFooter(t *testing.T) {
	out := FormatFooter("Enter", "Send", "Esc")
	assert.Contains(t, out, "Enter")
	assert.Contains(t, out, "Send")
	assert.NotContains(t, out, "Esc")
}
