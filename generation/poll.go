package generation

import (
	"context"
	"errors"
	"strings"
	"time"
)

type phase int

const (
	phaseUnknown phase = iota
	phaseInProgress
	phaseFailed
	phaseSucceeded
)

// classifyPhase maps a remote job status onto a phase. Matching ignores
// case, spaces, dashes and underscores.
func classifyPhase(status string) phase {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)

	switch s {
	case "pending", "inqueue", "queued", "running", "inprogress", "processing":
		return phaseInProgress
	case "failed", "error":
		return phaseFailed
	case "succeed", "succeeded", "success", "completed":
		return phaseSucceeded
	default:
		return phaseUnknown
	}
}

// pollVideo waits PollInterval, then queries the job, up to MaxPolls times.
//
// Any failed status query counts as one consecutive error and any successful
// query resets the count, whatever phase it reports. The loop gives up when
// the count exceeds MaxPollErrors. A succeeded report without a URL keeps
// polling.
func (o *Orchestrator) pollVideo(ctx context.Context, requestID string) (string, *GenerationError) {
	logger := o.logger.With("request_id", requestID)
	consecutiveErrors := 0

	for attempt := 1; attempt <= o.opts.MaxPolls; attempt++ {
		if err := sleepCtx(ctx, o.opts.PollInterval); err != nil {
			return "", stageError(ctx, ErrorKindCancelled, "poll-video", "cancelled", err)
		}

		st, err := o.gen.PollVideoJob(ctx, requestID)
		if err == nil && st == nil {
			err = errors.New("empty status response")
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", stageError(ctx, ErrorKindCancelled, "poll-video", "cancelled", err)
			}
			consecutiveErrors++
			logger.Warn("video status check failed", "attempt", attempt, "consecutive_errors", consecutiveErrors, "error", err)
			if consecutiveErrors > o.opts.MaxPollErrors {
				return "", &GenerationError{
					Kind:   ErrorKindPollExhaustion,
					Stage:  "poll-video",
					Reason: "status checks failing repeatedly",
					Err:    err,
				}
			}
			continue
		}
		consecutiveErrors = 0

		switch classifyPhase(st.Status) {
		case phaseSucceeded:
			if u := st.FirstURL(); u != "" {
				logger.Debug("video ready", "attempt", attempt)
				return u, nil
			}
			logger.Debug("video reported success without a url, polling on", "attempt", attempt)
		case phaseFailed:
			reason := strings.TrimSpace(st.Reason)
			if reason == "" {
				reason = "unknown reason"
			}
			return "", &GenerationError{Kind: ErrorKindRemote, Stage: "poll-video", Reason: "remote job failed: " + reason}
		case phaseInProgress:
			logger.Debug("video in progress", "attempt", attempt, "status", st.Status)
		default:
			logger.Warn("unknown video status, polling on", "attempt", attempt, "status", st.Status)
		}
	}

	return "", &GenerationError{Kind: ErrorKindPollExhaustion, Stage: "poll-video", Reason: "timed out"}
}

// sleepCtx waits for d or until ctx ends, whichever is first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
