// Package chat routes user intents for the current session to the
// generation pipeline and keeps a View of that session up to date.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"genchat/generation"
	"genchat/model"
)

// ErrNothingToRetry is returned by RetryLastFailure when the session has no
// failed message.
var ErrNothingToRetry = errors.New("no failed message to retry")

// ErrNoSession is returned when an intent needs a session and none is open.
var ErrNoSession = errors.New("no session selected")

// ErrUnknownMessage is returned by DeleteMessage for an id that is not in
// the current session.
var ErrUnknownMessage = errors.New("message not in current session")

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("router closed")

// Runner executes one generation request.
type Runner interface {
	Run(ctx context.Context, req generation.Request) (model.Message, error)
}

// SessionIndex records session activity. storage.SessionStorage satisfies it.
type SessionIndex interface {
	Touch(ctx context.Context, id, lastMessage string) error
}

// Router is the single entry point for user intents.
type Router struct {
	runner   Runner
	store    model.MessageStore
	sessions SessionIndex
	logger   *slog.Logger

	mu       sync.Mutex
	view     View
	inFlight map[string]int
	subs     map[int]chan View
	nextSub  int
	closed   bool

	baseCtx    context.Context
	cancelRuns context.CancelFunc

	unwatch  func()
	requests sync.WaitGroup
	relays   sync.WaitGroup
}

// NewRouter creates a router. sessions may be nil.
func NewRouter(runner Runner, store model.MessageStore, sessions SessionIndex, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Router{
		runner:     runner,
		store:      store,
		sessions:   sessions,
		logger:     logger,
		inFlight:   make(map[string]int),
		subs:       make(map[int]chan View),
		baseCtx:    ctx,
		cancelRuns: cancel,
	}
}

// Open makes sessionID the current session and loads its log. Requests of
// the previous session keep running.
func (r *Router) Open(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrNoSession
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.unwatch != nil {
		r.unwatch()
	}
	updates, unwatch := r.store.Subscribe(sessionID)
	r.unwatch = unwatch
	r.applyLocked(SessionChanged{SessionID: sessionID, InFlight: r.inFlight[sessionID]})
	r.mu.Unlock()

	// The initial load goes in before the relay starts: a snapshot
	// published after Subscribe is never older than it.
	msgs, err := r.store.QueryBySession(ctx, sessionID)
	if err == nil {
		r.apply(MessagesLoaded{SessionID: sessionID, Messages: msgs})
	}

	r.relays.Add(1)
	go func() {
		defer r.relays.Done()
		for snapshot := range updates {
			r.apply(MessagesLoaded{SessionID: sessionID, Messages: snapshot})
		}
	}()

	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	r.logger.Debug("session opened", "session", sessionID, "messages", len(msgs))
	return nil
}

// View returns the current view.
func (r *Router) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Subscribe returns a channel that receives the view after every change,
// starting with the current one. A slow reader only ever sees the latest
// view. cancel closes the channel.
func (r *Router) Subscribe() (<-chan View, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	ch := make(chan View, 1)
	ch <- r.view
	if r.closed {
		close(ch)
		return ch, func() {}
	}
	r.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
		})
	}
}

// Dispatch applies intent to the current session. Generation intents start
// a background request and return immediately; blank prompts are ignored.
func (r *Router) Dispatch(ctx context.Context, intent Intent) error {
	r.mu.Lock()
	closed, sessionID, draft := r.closed, r.view.SessionID, r.view.DraftText
	r.mu.Unlock()
	if closed {
		return ErrClosed
	}

	switch it := intent.(type) {
	case UpdateDraft:
		r.apply(DraftChanged{Text: it.Text})
		return nil
	case DismissError:
		r.apply(ErrorDismissed{})
		return nil
	}

	if sessionID == "" {
		return ErrNoSession
	}

	switch it := intent.(type) {
	case SendText:
		r.submit(sessionID, model.KindText, it.Text, draft, "")
	case GenerateImage:
		r.submit(sessionID, model.KindImage, it.Prompt, draft, "")
	case GenerateVideo:
		r.submit(sessionID, model.KindVideo, it.Prompt, draft, it.ReferenceImage)

	case DeleteMessage:
		msgs, err := r.store.QueryBySession(ctx, sessionID)
		if err != nil {
			return r.fail(sessionID, fmt.Errorf("failed to load session: %w", err))
		}
		if !slices.ContainsFunc(msgs, func(m model.Message) bool { return m.ID == it.ID }) {
			return fmt.Errorf("message %s: %w", it.ID, ErrUnknownMessage)
		}
		if err := r.store.DeleteByID(ctx, it.ID); err != nil {
			return r.fail(sessionID, fmt.Errorf("failed to delete message: %w", err))
		}
	case ClearSession:
		if err := r.store.ClearSession(ctx, sessionID); err != nil {
			return r.fail(sessionID, fmt.Errorf("failed to clear session: %w", err))
		}
	case RetryLastFailure:
		return r.retry(ctx, sessionID)

	default:
		return fmt.Errorf("unsupported intent %T", intent)
	}
	return nil
}

func (r *Router) retry(ctx context.Context, sessionID string) error {
	msgs, err := r.store.QueryBySession(ctx, sessionID)
	if err != nil {
		return r.fail(sessionID, fmt.Errorf("failed to load session: %w", err))
	}
	failed, ok := lastFailure(msgs)
	if !ok {
		return ErrNothingToRetry
	}

	prompt := failed.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = failed.Content
	}
	r.logger.Debug("retrying failed request", "session", sessionID, "message", failed.ID, "kind", failed.Kind)
	r.start(generation.Request{
		SessionID:      sessionID,
		Kind:           failed.Kind,
		Prompt:         prompt,
		ReferenceImage: failed.Reference,
	})
	return nil
}

// lastFailure returns the most recent failed message of an ordered log.
func lastFailure(msgs []model.Message) (model.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Status == model.StatusFailed {
			return msgs[i], true
		}
	}
	return model.Message{}, false
}

// submit starts a request for prompt, or for the draft when prompt is blank.
// Taking the draft clears it.
func (r *Router) submit(sessionID string, kind model.Kind, prompt, draft, reference string) {
	if strings.TrimSpace(prompt) == "" {
		if strings.TrimSpace(draft) == "" {
			return
		}
		prompt = draft
		r.apply(DraftChanged{})
	}
	r.start(generation.Request{SessionID: sessionID, Kind: kind, Prompt: prompt, ReferenceImage: reference})
}

func (r *Router) start(req generation.Request) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	ctx := r.baseCtx
	r.inFlight[req.SessionID]++
	r.applyLocked(BusyChanged{SessionID: req.SessionID, InFlight: r.inFlight[req.SessionID]})
	r.requests.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.requests.Done()
		defer func() {
			r.mu.Lock()
			r.inFlight[req.SessionID]--
			n := r.inFlight[req.SessionID]
			if n == 0 {
				delete(r.inFlight, req.SessionID)
			}
			r.applyLocked(BusyChanged{SessionID: req.SessionID, InFlight: n})
			r.mu.Unlock()
		}()

		if r.sessions != nil {
			if err := r.sessions.Touch(ctx, req.SessionID, req.Prompt); err != nil {
				r.logger.Warn("failed to update session", "session", req.SessionID, "error", err)
			}
		}

		result, err := r.runner.Run(ctx, req)
		switch {
		case err == nil:
			r.touch(req.SessionID, result)
		case errors.Is(err, generation.ErrSkipped):
		default:
			r.touch(req.SessionID, result)
			r.apply(ErrorRaised{SessionID: req.SessionID, Message: notice(result, err)})
		}
	}()
}

func (r *Router) touch(sessionID string, result model.Message) {
	if r.sessions == nil || result.ID == "" {
		return
	}
	// the run context may already be cancelled
	if err := r.sessions.Touch(context.WithoutCancel(r.baseCtx), sessionID, result.Content); err != nil {
		r.logger.Warn("failed to update session", "session", sessionID, "error", err)
	}
}

// notice is the error text shown for a failed run: the failed record's text
// followed by the underlying cause.
func notice(result model.Message, err error) string {
	var gerr *generation.GenerationError
	if !errors.As(err, &gerr) {
		if result.Status == model.StatusFailed && result.Content != "" {
			return result.Content + " (" + err.Error() + ")"
		}
		return err.Error()
	}
	if result.Status != model.StatusFailed || result.Content == "" {
		return gerr.Detail()
	}
	if gerr.Err == nil {
		return result.Content
	}
	return result.Content + " (" + gerr.Err.Error() + ")"
}

func (r *Router) fail(sessionID string, err error) error {
	r.logger.Error("intent failed", "session", sessionID, "error", err)
	r.apply(ErrorRaised{SessionID: sessionID, Message: err.Error()})
	return err
}

// Wait blocks until every started request has finished.
func (r *Router) Wait() {
	r.requests.Wait()
}

// CancelRequests cancels the running requests. Their placeholders are still
// reconciled to failed.
func (r *Router) CancelRequests() {
	r.mu.Lock()
	cancel := r.cancelRuns
	r.baseCtx, r.cancelRuns = context.WithCancel(context.Background())
	r.mu.Unlock()
	cancel()
}

// Close cancels running requests, waits for them and releases every
// subscription.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	cancel := r.cancelRuns
	r.mu.Unlock()

	cancel()
	r.requests.Wait()

	r.mu.Lock()
	if r.unwatch != nil {
		r.unwatch()
		r.unwatch = nil
	}
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	r.mu.Unlock()
	r.relays.Wait()
}

func (r *Router) apply(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applyLocked(ev)
}

func (r *Router) applyLocked(ev Event) {
	r.view = Reduce(r.view, ev)
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- r.view
	}
}
