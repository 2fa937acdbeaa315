// Package generation runs one generation request from prompt to terminal
// record: it persists the user turn and a pending placeholder, calls the
// remote generator (polling for video) and replaces the placeholder with a
// succeeded or failed record carrying the same id.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"genchat/model"

	"github.com/google/uuid"
)

// Request is one user-initiated generation.
type Request struct {
	SessionID string
	Kind      model.Kind
	Prompt    string

	// ReferenceImage is a local image path that conditions a video request.
	ReferenceImage string
}

// Placeholder texts shown while a request is pending.
const (
	PendingText  = "Thinking..."
	PendingImage = "Generating image..."
	PendingVideo = "Generating video, this can take a few minutes..."
)

// Orchestrator executes generation requests. It is safe for concurrent use;
// each Run is independent and strictly sequential internally.
type Orchestrator struct {
	gen    model.Generator
	store  model.MessageStore
	media  MediaResolver
	ctxb   *ContextBuilder
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	lastStamp time.Time

	newID func() string
	seed  func() int
}

// New creates an orchestrator. media may be nil, in which case image
// requests fail at the download stage.
func New(gen model.Generator, store model.MessageStore, media MediaResolver, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.ReconcileTimeout <= 0 {
		opts.ReconcileTimeout = DefaultReconcileTimeout
	}
	return &Orchestrator{
		gen:    gen,
		store:  store,
		media:  media,
		ctxb:   NewContextBuilder(store, opts.SystemPrompt, opts.ContextWindow, opts.SummaryMaxWidth),
		opts:   opts,
		logger: logger,
		newID:  func() string { return uuid.New().String() },
		seed:   func() int { return rand.IntN(maxSeed) + 1 },
	}
}

// Options returns the settings the orchestrator runs with.
func (o *Orchestrator) Options() Options {
	return o.opts
}

// ContextBuilder returns the builder used for prompt context.
func (o *Orchestrator) ContextBuilder() *ContextBuilder {
	return o.ctxb
}

// Run executes req and returns the terminal assistant record.
//
// A blank prompt or session returns ErrSkipped without touching the store.
// Otherwise the user turn and the pending placeholder are persisted before
// any remote call, and on return the placeholder has been replaced, even when
// ctx was cancelled or a stage panicked. A failed run returns the failed
// record together with a *GenerationError.
func (o *Orchestrator) Run(ctx context.Context, req Request) (result model.Message, err error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" || strings.TrimSpace(req.SessionID) == "" {
		return model.Message{}, ErrSkipped
	}
	if _, ok := model.ParseKind(string(req.Kind)); !ok {
		return model.Message{}, fmt.Errorf("unknown kind %q: %w", req.Kind, ErrSkipped)
	}

	logger := o.logger.With("session", req.SessionID, "kind", req.Kind)

	user := model.Message{
		ID:        o.newID(),
		SessionID: req.SessionID,
		Role:      model.RoleUser,
		Kind:      model.KindText,
		Content:   prompt,
		Status:    model.StatusSucceeded,
		CreatedAt: o.stamp(),
	}
	if err := o.store.Append(ctx, user); err != nil {
		return model.Message{}, fmt.Errorf("failed to persist user message: %w", err)
	}

	placeholder := model.Message{
		ID:        o.newID(),
		SessionID: req.SessionID,
		Role:      model.RoleAssistant,
		Kind:      req.Kind,
		Content:   pendingContent(req.Kind),
		Status:    model.StatusPending,
		CreatedAt: o.stamp(),
		Prompt:    prompt,
		Reference: req.ReferenceImage,
	}
	if err := o.store.Append(ctx, placeholder); err != nil {
		return model.Message{}, fmt.Errorf("failed to persist placeholder: %w", err)
	}
	logger = logger.With("message", placeholder.ID)
	logger.Debug("generation started")

	defer func() {
		if r := recover(); r != nil {
			logger.Error("generation panicked", "panic", r, "stack", string(debug.Stack()))
			perr := &GenerationError{
				Kind:   ErrorKindInternal,
				Stage:  "run",
				Reason: "unexpected error",
				Err:    fmt.Errorf("panic: %v", r),
			}
			result, err = o.reconcile(ctx, logger, placeholder, "", perr)
		}
	}()

	var content string
	var stageErr *GenerationError
	switch req.Kind {
	case model.KindText:
		content, stageErr = o.runText(ctx, req.SessionID)
	case model.KindImage:
		content, stageErr = o.runImage(ctx, req.SessionID, prompt, user.ID)
	case model.KindVideo:
		content, stageErr = o.runVideo(ctx, req, prompt, user.ID)
	}

	return o.reconcile(ctx, logger, placeholder, content, stageErr)
}

// reconcile writes the terminal record over the placeholder. The write uses
// a context detached from ctx so a cancelled run still leaves no pending
// record behind.
func (o *Orchestrator) reconcile(ctx context.Context, logger *slog.Logger, placeholder model.Message, content string, stageErr *GenerationError) (model.Message, error) {
	final := placeholder
	if stageErr == nil {
		final.Status = model.StatusSucceeded
		final.Content = content
	} else {
		final.Status = model.StatusFailed
		final.Content = failureContent(placeholder.Kind, stageErr)
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.opts.ReconcileTimeout)
	defer cancel()

	if err := o.store.Append(wctx, final); err != nil {
		logger.Error("failed to persist terminal record", "status", final.Status, "error", err)
		werr := fmt.Errorf("failed to persist result: %w", err)
		if stageErr != nil {
			return final, errors.Join(stageErr, werr)
		}
		return final, &GenerationError{Kind: ErrorKindInternal, Stage: "reconcile", Reason: "could not save result", Err: err}
	}

	if stageErr != nil {
		logger.Warn("generation failed", "error_kind", stageErr.Kind, "stage", stageErr.Stage, "error", stageErr)
		return final, stageErr
	}
	logger.Debug("generation succeeded")
	return final, nil
}

func (o *Orchestrator) runText(ctx context.Context, sessionID string) (string, *GenerationError) {
	turns, err := o.ctxb.Turns(ctx, sessionID)
	if err != nil {
		return "", stageError(ctx, ErrorKindInternal, "build-context", "could not load conversation", err)
	}

	resp, err := o.gen.CompleteText(ctx, o.opts.TextModel, slices.Collect(turns))
	if err != nil {
		return "", stageError(ctx, ErrorKindRemote, "complete-text", "request failed", err)
	}
	content := resp.FirstContent()
	if strings.TrimSpace(content) == "" {
		return "", stageError(ctx, ErrorKindRemote, "complete-text", "empty response", nil)
	}
	return content, nil
}

func (o *Orchestrator) runImage(ctx context.Context, sessionID, prompt, userID string) (string, *GenerationError) {
	summary, err := o.ctxb.Summary(ctx, sessionID, userID)
	if err != nil {
		return "", stageError(ctx, ErrorKindInternal, "build-context", "could not load conversation", err)
	}

	resp, err := o.gen.GenerateImage(ctx, model.ImageRequest{
		Model:  o.opts.ImageModel,
		Prompt: augmentPrompt(summary, "image", prompt),
		Size:   o.opts.ImageSize,
	})
	if err != nil {
		return "", stageError(ctx, ErrorKindRemote, "generate-image", "request failed", err)
	}
	remoteURL := resp.FirstURL()
	if remoteURL == "" {
		return "", stageError(ctx, ErrorKindRemote, "generate-image", "no image URL returned", nil)
	}

	if o.media == nil {
		return "", &GenerationError{Kind: ErrorKindResourceResolution, Stage: "store-image", Reason: "no media storage configured"}
	}
	local, err := o.media.Resolve(ctx, remoteURL)
	if err != nil {
		return "", stageError(ctx, ErrorKindResourceResolution, "store-image", "could not download image", err)
	}
	return local, nil
}

func (o *Orchestrator) runVideo(ctx context.Context, req Request, prompt, userID string) (string, *GenerationError) {
	summary, err := o.ctxb.Summary(ctx, req.SessionID, userID)
	if err != nil {
		return "", stageError(ctx, ErrorKindInternal, "build-context", "could not load conversation", err)
	}

	vreq := model.VideoRequest{
		Model:          o.opts.VideoTextModel,
		Prompt:         augmentPrompt(summary, "video", prompt),
		NegativePrompt: o.opts.NegativePrompt,
		ImageSize:      o.opts.VideoTextSize,
	}
	if req.ReferenceImage != "" {
		dataURI, err := EncodeReference(req.ReferenceImage)
		if err != nil {
			return "", stageError(ctx, ErrorKindResourceResolution, "encode-reference", "could not read reference image", err)
		}
		vreq.Model = o.opts.VideoImageModel
		vreq.ImageSize = o.opts.VideoImageSize
		vreq.Image = dataURI
		vreq.Seed = o.seed()
	}

	sub, err := o.gen.SubmitVideoJob(ctx, vreq)
	if err != nil {
		return "", stageError(ctx, ErrorKindRemote, "submit-video", "submission failed", err)
	}
	if sub == nil || strings.TrimSpace(sub.RequestID) == "" {
		return "", stageError(ctx, ErrorKindRemote, "submit-video", "no request id returned", nil)
	}

	videoURL, gerr := o.pollVideo(ctx, sub.RequestID)
	if gerr != nil {
		return "", gerr
	}

	if !o.opts.DownloadVideos || o.media == nil {
		return videoURL, nil
	}
	local, err := o.media.Resolve(ctx, videoURL)
	if err != nil {
		return "", stageError(ctx, ErrorKindResourceResolution, "store-video", "could not download video", err)
	}
	return local, nil
}

// stamp returns a creation time strictly after every earlier stamp, so the
// records of one request sort in the order they were written.
func (o *Orchestrator) stamp() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()

	// wall clock only: stamps are persisted as unix nanoseconds
	now := time.Now().Round(0)
	if !now.After(o.lastStamp) {
		now = o.lastStamp.Add(time.Nanosecond)
	}
	o.lastStamp = now
	return now
}

func pendingContent(kind model.Kind) string {
	switch kind {
	case model.KindImage:
		return PendingImage
	case model.KindVideo:
		return PendingVideo
	default:
		return PendingText
	}
}

func failureContent(kind model.Kind, gerr *GenerationError) string {
	switch kind {
	case model.KindImage:
		return "Image generation failed: " + gerr.UserMessage()
	case model.KindVideo:
		return "Video generation failed: " + gerr.UserMessage()
	default:
		return "Message failed to send (" + gerr.UserMessage() + "). Use retry to send it again."
	}
}
