package chat

import (
	"slices"

	"genchat/model"
)

// View is the presentation state of one session.
type View struct {
	SessionID string
	Messages  []model.Message // system turns are never included
	DraftText string
	IsBusy    bool
	LastError string
}

// Event is a state change fed to Reduce.
type Event interface {
	isEvent()
}

// SessionChanged switches the view to another session.
type SessionChanged struct {
	SessionID string
	InFlight  int
}

// MessagesLoaded carries a fresh snapshot of a session's log.
type MessagesLoaded struct {
	SessionID string
	Messages  []model.Message
}

// DraftChanged replaces the draft text.
type DraftChanged struct {
	Text string
}

// BusyChanged reports the number of running requests of a session.
type BusyChanged struct {
	SessionID string
	InFlight  int
}

// ErrorRaised sets the transient error notice of a session.
type ErrorRaised struct {
	SessionID string
	Message   string
}

// ErrorDismissed clears the error notice.
type ErrorDismissed struct{}

func (SessionChanged) isEvent() {}
func (MessagesLoaded) isEvent() {}
func (DraftChanged) isEvent()   {}
func (BusyChanged) isEvent()    {}
func (ErrorRaised) isEvent()    {}
func (ErrorDismissed) isEvent() {}

// Reduce returns the view that results from applying ev to v. It never
// modifies v. Events addressed to a session other than v's are ignored.
func Reduce(v View, ev Event) View {
	switch ev := ev.(type) {
	case SessionChanged:
		if ev.SessionID == v.SessionID {
			v.IsBusy = ev.InFlight > 0
			return v
		}
		return View{SessionID: ev.SessionID, IsBusy: ev.InFlight > 0}

	case MessagesLoaded:
		if ev.SessionID != v.SessionID {
			return v
		}
		v.Messages = visible(ev.Messages)

	case DraftChanged:
		v.DraftText = ev.Text

	case BusyChanged:
		if ev.SessionID == v.SessionID {
			v.IsBusy = ev.InFlight > 0
		}

	case ErrorRaised:
		if ev.SessionID == v.SessionID && ev.Message != "" {
			v.LastError = ev.Message
		}

	case ErrorDismissed:
		v.LastError = ""
	}
	return v
}

func visible(messages []model.Message) []model.Message {
	out := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role != model.RoleSystem {
			out = append(out, m)
		}
	}
	return slices.Clip(out)
}
