// Package ui is the terminal front end: a bubbletea model that renders the
// router's view and turns keystrokes and slash commands into intents.
package ui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"genchat/chat"
	"genchat/storage"
)

// Deps are the services the app view drives.
type Deps struct {
	Router   *chat.Router
	Sessions *storage.SessionStorage
	Search   *storage.SearchIndex
	Logger   *slog.Logger
	Version  string

	// StaleAfter marks pending messages older than this as interrupted.
	StaleAfter time.Duration
}

type AppView struct {
	deps Deps

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	view        chat.View
	views       <-chan chat.View
	unsubscribe func()

	sessionTitle string
	sessionList  []sessionEntry

	// rendered caches markdown per message id at renderedWidth.
	rendered      map[string]string
	renderedWidth int

	notice   string
	overlay  string
	showHelp bool
}

// sessionEntry is one numbered row of the last /sessions listing.
type sessionEntry struct {
	id    string
	title string
}

func NewAppView(deps Deps) AppView {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	ta := textarea.New()
	ta.Placeholder = "Message, /image <prompt>, /video <prompt> or /help"
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = PendingStyle

	views, unsubscribe := deps.Router.Subscribe()

	return AppView{
		deps:        deps,
		viewport:    viewport.New(0, 0),
		textarea:    ta,
		spinner:     sp,
		view:        deps.Router.View(),
		views:       views,
		unsubscribe: unsubscribe,
		rendered:    make(map[string]string),
	}
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		a.spinner.Tick,
		waitForView(a.views),
		a.fetchTitle(a.view.SessionID),
	)
}

// Close releases the view subscription.
func (a AppView) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// waitForView blocks on the router's subscription channel.
func waitForView(views <-chan chat.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-views
		return viewMsg{view: v, ok: ok}
	}
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading genchat..."
	}
	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	header := TitleStyle.Render("genchat") + "  " + a.sessionTitle
	if a.view.SessionID != "" {
		header += DimStyle.Render("  " + shortID(a.view.SessionID))
	}

	body := a.viewport.View()
	if a.overlay != "" {
		body = lipgloss.NewStyle().Height(a.viewport.Height).MaxHeight(a.viewport.Height).Render(a.overlay)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		a.statusLine(),
		a.textarea.View(),
		a.footer(),
	)
}

func (a AppView) statusLine() string {
	switch {
	case a.view.LastError != "":
		return ErrorBarStyle.Render("✗ "+a.view.LastError) + DimStyle.Render("  (Esc to dismiss)")
	case a.notice != "":
		return StatusStyle.Render(a.notice)
	case a.view.IsBusy:
		return PendingStyle.Render(a.spinner.View() + " working...")
	}
	return ""
}

func (a AppView) footer() string {
	if a.overlay != "" {
		return FormatFooter("/open n", "Open", "Esc", "Close")
	}
	if a.view.IsBusy {
		return FormatFooter("Enter", "Send", "Ctrl+X", "Cancel", "F1", "Help", "Ctrl+C", "Quit")
	}
	return FormatFooter("Enter", "Send", "/image", "Image", "/video", "Video", "/retry", "Retry", "F1", "Help", "Ctrl+C", "Quit")
}

func (a *AppView) resize(width, height int) {
	a.width, a.height = width, height
	a.textarea.SetWidth(width)
	// header, status, footer
	h := height - a.textarea.Height() - 3
	if h < 1 {
		h = 1
	}
	a.viewport.Width = width
	a.viewport.Height = h
	a.ready = true
}

// updateViewportContent re-renders the conversation and returns the
// markdown renders still missing at the current width.
func (a *AppView) updateViewportContent() tea.Cmd {
	if a.renderedWidth != a.width {
		a.rendered = make(map[string]string)
		a.renderedWidth = a.width
	}

	var cmds []tea.Cmd
	for _, m := range a.view.Messages {
		if !needsMarkdown(m) {
			continue
		}
		if _, ok := a.rendered[m.ID]; !ok {
			a.rendered[m.ID] = ""
			cmds = append(cmds, renderMarkdownCmd(m.ID, m.Content, a.width))
		}
	}

	atBottom := a.viewport.AtBottom()
	a.viewport.SetContent(renderConversation(a.view.Messages, renderOptions{
		width:      a.width,
		spinner:    a.spinner.View(),
		rendered:   a.rendered,
		staleAfter: a.deps.StaleAfter,
		now:        time.Now(),
	}))
	if atBottom {
		a.viewport.GotoBottom()
	}
	return tea.Batch(cmds...)
}

func (a AppView) hasPending() bool {
	for _, m := range a.view.Messages {
		if !m.IsTerminal() {
			return true
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
