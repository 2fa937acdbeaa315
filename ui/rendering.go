package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"

	"genchat/model"
	"genchat/storage"
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

// renderOptions carries what message rendering needs besides the messages.
type renderOptions struct {
	width      int
	spinner    string
	rendered   map[string]string
	staleAfter time.Duration
	now        time.Time
}

// renderConversation lays out the visible messages, numbered so /delete can
// address them.
func renderConversation(msgs []model.Message, opts renderOptions) string {
	if len(msgs) == 0 {
		return DimStyle.Render("No messages yet. Type a prompt, or /image and /video to generate media.")
	}

	var b strings.Builder
	for i, m := range msgs {
		stamp := DimStyle.Render(fmt.Sprintf("%d [%s]", i+1, m.CreatedAt.Local().Format("15:04")))
		switch m.Role {
		case model.RoleUser:
			b.WriteString(stamp + " " + UserStyle.Render("You") + "\n")
			b.WriteString(formatUserMessage(m.Content, opts.width))
		default:
			b.WriteString(stamp + " " + AssistantStyle.Render("Assistant") + kindTag(m.Kind) + "\n")
			b.WriteString(messageBody(m, opts))
		}
		if i < len(msgs)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func kindTag(k model.Kind) string {
	if k == model.KindText || k == "" {
		return ""
	}
	return DimStyle.Render(" · " + string(k))
}

func messageBody(m model.Message, opts renderOptions) string {
	switch {
	case model.IsStale(m, opts.now, opts.staleAfter):
		return FailedStyle.Render("✗ No result after " + opts.staleAfter.String() + ". The request may have been interrupted.")
	case m.Status == model.StatusPending:
		return PendingStyle.Render(opts.spinner + " " + m.Content)
	case m.Status == model.StatusFailed:
		return FailedStyle.Render("✗ "+m.Content) + "\n" + DimStyle.Render("  /retry to run it again")
	}

	switch m.Kind {
	case model.KindImage:
		return MediaStyle.Render("🖼  image saved to " + storage.LocalPath(m.Content))
	case model.KindVideo:
		return MediaStyle.Render("🎬 video ready: " + storage.LocalPath(m.Content))
	}
	if r, ok := opts.rendered[m.ID]; ok && r != "" {
		return r
	}
	return m.Content
}

func needsMarkdown(m model.Message) bool {
	return m.Role == model.RoleAssistant && m.Kind == model.KindText && m.Status == model.StatusSucceeded
}

// formatUserMessage prefixes every wrapped line with a bar.
func formatUserMessage(content string, width int) string {
	bar := UserStyle.Render("┃") + " "
	w := width - 4
	if w < 20 {
		w = 20
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		for runewidth.StringWidth(line) > w {
			head := runewidth.Truncate(line, w, "")
			if head == "" {
				_, size := utf8.DecodeRuneInString(line)
				head = line[:size]
			}
			lines = append(lines, bar+head)
			line = line[len(head):]
		}
		lines = append(lines, bar+line)
	}
	return strings.Join(lines, "\n")
}

// renderMarkdown renders assistant text for the terminal.
func renderMarkdown(content string, width int) string {
	if width < 24 {
		width = 24
	}
	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	doc := gomarkdown.Parse([]byte(content), p)
	out := gomarkdown.Render(doc, markdown.NewRenderer(width-4, 0))
	return postProcessMarkdown(string(out))
}

func postProcessMarkdown(s string) string {
	s = fixInlineCode(s)
	s = fixMarkdownLinks(s)
	return strings.TrimRight(s, "\n ")
}

// fixInlineCode swaps the renderer's background-colored inline code for a
// foreground color, which stays readable on transparent terminals.
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[36m$1\x1b[0m")
}

// fixMarkdownLinks shows any link the renderer left untouched as "text (url)"
// and highlights bare URLs.
func fixMarkdownLinks(s string) string {
	s = mdLinkRegex.ReplaceAllString(s, "$1 ($2)")
	return urlRegex.ReplaceAllStringFunc(s, func(u string) string {
		return "\x1b[4m" + u + "\x1b[24m"
	})
}

// renderMarkdownCmd renders one message off the update loop.
func renderMarkdownCmd(id, content string, width int) tea.Cmd {
	return func() tea.Msg {
		return markdownRenderedMsg{id: id, width: width, rendered: renderMarkdown(content, width)}
	}
}
