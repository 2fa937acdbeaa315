package generation

import (
	"context"
	"errors"
	"fmt"
)

// ErrSkipped is returned by Run when the request is a no-op (blank prompt
// or session). Nothing is persisted and callers should not surface it.
var ErrSkipped = errors.New("generation skipped")

// ErrorKind classifies generation failures.
type ErrorKind int

const (
	// ErrorKindRemote covers transport errors, non-success responses,
	// empty bodies and remote job failures.
	ErrorKindRemote ErrorKind = iota + 1
	// ErrorKindResourceResolution covers local media work: reading the
	// reference image or downloading a generated artifact.
	ErrorKindResourceResolution
	// ErrorKindPollExhaustion means the poll budget ran out, either by
	// iterations or by consecutive status errors.
	ErrorKindPollExhaustion
	// ErrorKindCancelled means the caller's context ended mid-run.
	ErrorKindCancelled
	// ErrorKindInternal covers store failures and recovered panics.
	ErrorKindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindRemote:
		return "remote"
	case ErrorKindResourceResolution:
		return "resource-resolution"
	case ErrorKindPollExhaustion:
		return "poll-exhaustion"
	case ErrorKindCancelled:
		return "cancelled"
	case ErrorKindInternal:
		return "internal"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// GenerationError is the error type of every failed stage.
type GenerationError struct {
	Kind   ErrorKind
	Stage  string
	Reason string // short, user-facing
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UserMessage returns the text shown in a failed record or error notice.
func (e *GenerationError) UserMessage() string {
	return e.Reason
}

// Detail returns the user-facing reason followed by the underlying cause,
// when there is one.
func (e *GenerationError) Detail() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

// KindOf reports the ErrorKind of err, if it wraps a GenerationError.
func KindOf(err error) (ErrorKind, bool) {
	var gerr *GenerationError
	if errors.As(err, &gerr) {
		return gerr.Kind, true
	}
	return 0, false
}

// stageError builds a GenerationError, reclassifying it as cancelled when
// the failure was caused by ctx ending.
func stageError(ctx context.Context, kind ErrorKind, stage, reason string, err error) *GenerationError {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return &GenerationError{Kind: ErrorKindCancelled, Stage: stage, Reason: "cancelled", Err: err}
	}
	return &GenerationError{Kind: kind, Stage: stage, Reason: reason, Err: err}
}
