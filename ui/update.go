package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"genchat/chat"
	"genchat/model"
	"genchat/storage"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, a.updateViewportContent()

	case tea.KeyMsg:
		if cmd, handled := a.handleKey(msg); handled {
			return a, cmd
		}

	case viewMsg:
		if !msg.ok {
			return a, nil
		}
		wasBusy := a.view.IsBusy
		a.view = msg.view
		cmds = append(cmds, waitForView(a.views), a.updateViewportContent())
		if wasBusy && !a.view.IsBusy {
			cmds = append(cmds, a.fetchTitle(a.view.SessionID))
		}
		return a, tea.Batch(cmds...)

	case markdownRenderedMsg:
		if msg.width == a.renderedWidth {
			a.rendered[msg.id] = msg.rendered
			return a, a.updateViewportContent()
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		if a.hasPending() {
			return a, tea.Batch(cmd, a.updateViewportContent())
		}
		return a, cmd

	case sessionOpenedMsg:
		if msg.err != nil {
			a.notice = "✗ " + msg.err.Error()
			return a, nil
		}
		a.overlay = ""
		a.sessionTitle = msg.session.Title
		a.notice = "Opened " + msg.session.Title
		return a, nil

	case sessionTitleMsg:
		if msg.id == a.view.SessionID {
			a.sessionTitle = msg.title
		}
		return a, nil

	case sessionsListMsg:
		if msg.err != nil {
			a.notice = "✗ " + msg.err.Error()
			return a, nil
		}
		a.sessionList = a.sessionList[:0]
		for _, s := range msg.sessions {
			a.sessionList = append(a.sessionList, sessionEntry{id: s.ID, title: s.Title})
		}
		a.overlay = renderSessionList(msg.sessions, a.view.SessionID)
		return a, nil

	case searchResultsMsg:
		if msg.err != nil {
			a.notice = "✗ " + msg.err.Error()
			return a, nil
		}
		a.sessionList = a.sessionList[:0]
		a.overlay = renderSearchResults(msg.query, msg.matches, func(id, title string) int {
			for i, e := range a.sessionList {
				if e.id == id {
					return i + 1
				}
			}
			a.sessionList = append(a.sessionList, sessionEntry{id: id, title: title})
			return len(a.sessionList)
		})
		return a, nil

	case noticeMsg:
		if msg.err != nil {
			a.notice = "✗ " + msg.err.Error()
		} else {
			a.notice = msg.text
		}
		return a, nil
	}

	var cmd tea.Cmd
	before := a.textarea.Value()
	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	if v := a.textarea.Value(); v != before && !strings.HasPrefix(strings.TrimSpace(v), "/") {
		if err := a.deps.Router.Dispatch(context.Background(), chat.UpdateDraft{Text: v}); err != nil {
			a.deps.Logger.Debug("draft update dropped", "error", err)
		}
	}
	return a, tea.Batch(cmds...)
}

// handleKey handles global keys. It reports false for keys the textarea
// should receive.
func (a *AppView) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true

	case "esc":
		switch {
		case a.showHelp:
			a.showHelp = false
		case a.overlay != "":
			a.overlay = ""
		case a.view.LastError != "":
			_ = a.deps.Router.Dispatch(context.Background(), chat.DismissError{})
		default:
			a.notice = ""
		}
		return nil, true

	case "f1":
		a.showHelp = !a.showHelp
		return nil, true

	case "ctrl+x":
		a.deps.Router.CancelRequests()
		a.notice = "Cancelling running requests..."
		return nil, true

	case "pgup", "ctrl+u":
		a.viewport.HalfPageUp()
		return nil, true
	case "pgdown", "ctrl+d":
		a.viewport.HalfPageDown()
		return nil, true
	case "ctrl+home":
		a.viewport.GotoTop()
		return nil, true
	case "ctrl+end":
		a.viewport.GotoBottom()
		return nil, true

	case "enter":
		if a.showHelp {
			return nil, true
		}
		return a.submit(), true
	}
	return nil, false
}

func (a *AppView) submit() tea.Cmd {
	line := a.textarea.Value()
	cmd, err := ParseInput(line)
	if err != nil {
		a.notice = "✗ " + err.Error()
		return nil
	}
	if cmd.Intent == nil && cmd.Action == ActionNone {
		return nil
	}
	a.textarea.Reset()
	a.notice = ""

	if cmd.Intent != nil {
		return a.dispatch(cmd.Intent)
	}
	return a.runAction(cmd)
}

// dispatch sends intent to the router. Store-backed intents run off the
// update loop.
func (a *AppView) dispatch(intent chat.Intent) tea.Cmd {
	a.overlay = ""
	router := a.deps.Router
	return func() tea.Msg {
		err := router.Dispatch(context.Background(), intent)
		switch {
		case errors.Is(err, chat.ErrNothingToRetry):
			return noticeMsg{text: "Nothing to retry"}
		case err != nil:
			return noticeMsg{err: err}
		}
		if _, ok := intent.(chat.ClearSession); ok {
			return noticeMsg{text: "Session cleared"}
		}
		return nil
	}
}

func (a *AppView) runAction(cmd Command) tea.Cmd {
	switch cmd.Action {
	case ActionQuit:
		return tea.Quit
	case ActionHelp:
		a.showHelp = true
		return nil
	case ActionCancel:
		a.deps.Router.CancelRequests()
		a.notice = "Cancelling running requests..."
		return nil

	case ActionDelete:
		if cmd.Index > len(a.view.Messages) {
			a.notice = fmt.Sprintf("✗ no message %d", cmd.Index)
			return nil
		}
		return a.dispatch(chat.DeleteMessage{ID: a.view.Messages[cmd.Index-1].ID})

	case ActionCopy:
		return copyLastResponse(a.view.Messages)

	case ActionNewSession:
		return a.newSession()
	case ActionListSessions:
		return a.listSessions()
	case ActionOpenSession:
		if cmd.Index > len(a.sessionList) {
			a.notice = "✗ run /sessions first, then /open <n>"
			return nil
		}
		return a.openSession(a.sessionList[cmd.Index-1].id)
	case ActionRenameSession:
		return a.renameSession(cmd.Arg)
	case ActionExport:
		return a.exportSession(cmd.Arg)
	case ActionSearch:
		return a.search(cmd.Arg)
	}
	return nil
}

func copyLastResponse(msgs []model.Message) tea.Cmd {
	return func() tea.Msg {
		for i := len(msgs) - 1; i >= 0; i-- {
			m := msgs[i]
			if m.Role != model.RoleAssistant || m.Status != model.StatusSucceeded {
				continue
			}
			text := m.Content
			if m.Kind != model.KindText {
				text = storage.LocalPath(text)
			}
			if err := clipboard.WriteAll(text); err != nil {
				return noticeMsg{err: fmt.Errorf("failed to copy: %w", err)}
			}
			return noticeMsg{text: "Copied last " + string(m.Kind) + " response"}
		}
		return noticeMsg{text: "Nothing to copy"}
	}
}

func (a *AppView) fetchTitle(sessionID string) tea.Cmd {
	sessions := a.deps.Sessions
	if sessions == nil || sessionID == "" {
		return nil
	}
	return func() tea.Msg {
		s, err := sessions.Get(context.Background(), sessionID)
		if err != nil {
			return nil
		}
		return sessionTitleMsg{id: s.ID, title: s.Title}
	}
}

func (a *AppView) newSession() tea.Cmd {
	sessions, router := a.deps.Sessions, a.deps.Router
	return func() tea.Msg {
		ctx := context.Background()
		s, err := sessions.Create(ctx)
		if err != nil {
			return sessionOpenedMsg{err: err}
		}
		return switchTo(ctx, sessions, router, s)
	}
}

func (a *AppView) openSession(id string) tea.Cmd {
	sessions, router := a.deps.Sessions, a.deps.Router
	return func() tea.Msg {
		ctx := context.Background()
		s, err := sessions.Get(ctx, id)
		if err != nil {
			return sessionOpenedMsg{err: err}
		}
		return switchTo(ctx, sessions, router, s)
	}
}

func switchTo(ctx context.Context, sessions *storage.SessionStorage, router *chat.Router, s *model.Session) tea.Msg {
	if err := router.Open(ctx, s.ID); err != nil {
		return sessionOpenedMsg{err: err}
	}
	if err := sessions.SaveCurrentSessionID(s.ID); err != nil {
		return sessionOpenedMsg{err: fmt.Errorf("failed to remember session: %w", err)}
	}
	return sessionOpenedMsg{session: s}
}

func (a *AppView) listSessions() tea.Cmd {
	sessions := a.deps.Sessions
	return func() tea.Msg {
		list, err := sessions.List(context.Background())
		return sessionsListMsg{sessions: list, err: err}
	}
}

func (a *AppView) renameSession(title string) tea.Cmd {
	sessions, id := a.deps.Sessions, a.view.SessionID
	a.sessionTitle = title
	return func() tea.Msg {
		if err := sessions.Rename(context.Background(), id, title); err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: "Renamed to " + title}
	}
}

func (a *AppView) exportSession(path string) tea.Cmd {
	sessions, id, title := a.deps.Sessions, a.view.SessionID, a.sessionTitle
	if path == "" {
		path = storage.GenerateExportPath(title)
	}
	return func() tea.Msg {
		if err := sessions.ExportToJSON(context.Background(), id, path); err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: "Exported to " + path}
	}
}

func (a *AppView) search(query string) tea.Cmd {
	index := a.deps.Search
	if index == nil {
		a.notice = "✗ search is not available"
		return nil
	}
	return func() tea.Msg {
		matches, err := index.SearchAllSessions(context.Background(), query)
		return searchResultsMsg{query: query, matches: matches, err: err}
	}
}
