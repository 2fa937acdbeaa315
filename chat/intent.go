package chat

// Intent is a user action submitted to a Router.
type Intent interface {
	isIntent()
}

// UpdateDraft replaces the draft text.
type UpdateDraft struct {
	Text string
}

// SendText sends Text, or the current draft when Text is blank.
type SendText struct {
	Text string
}

// GenerateImage requests an image for Prompt, or for the draft when blank.
type GenerateImage struct {
	Prompt string
}

// GenerateVideo requests a video for Prompt, or for the draft when blank.
// ReferenceImage optionally names a local image that conditions the video.
type GenerateVideo struct {
	Prompt         string
	ReferenceImage string
}

// DeleteMessage removes one message of the current session.
type DeleteMessage struct {
	ID string
}

// ClearSession removes every message of the current session.
type ClearSession struct{}

// RetryLastFailure re-runs the most recent failed request of the session.
type RetryLastFailure struct{}

// DismissError clears the error notice.
type DismissError struct{}

func (UpdateDraft) isIntent()      {}
func (SendText) isIntent()         {}
func (GenerateImage) isIntent()    {}
func (GenerateVideo) isIntent()    {}
func (DeleteMessage) isIntent()    {}
func (ClearSession) isIntent()     {}
func (RetryLastFailure) isIntent() {}
func (DismissError) isIntent()     {}
