package ui

import (
	"genchat/chat"
	"genchat/model"
	"genchat/storage"
)

type viewMsg struct {
	view chat.View
	ok   bool
}

type markdownRenderedMsg struct {
	id       string
	width    int
	rendered string
}

type sessionOpenedMsg struct {
	session *model.Session
	err     error
}

type sessionsListMsg struct {
	sessions []model.Session
	err      error
}

type searchResultsMsg struct {
	query   string
	matches []storage.MessageMatch
	err     error
}

type sessionTitleMsg struct {
	id    string
	title string
}

// noticeMsg reports the outcome of a background command in the status line.
type noticeMsg struct {
	text string
	err  error
}
