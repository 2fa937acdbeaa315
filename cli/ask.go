package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"genchat/chat"
	"genchat/model"
	"genchat/storage"
)

var (
	askMode    string
	askRef     string
	askSession string
	askNew     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Run one generation request and print the result",
	Long: `Run one text, image or video request in a session and print the result.

Text replies are printed as is. Images are downloaded into the data directory
and their path is printed. Videos print the finished video URL, or a local
path when download_videos is enabled.

The request sees the session's history like it would in the chat UI. By
default the last active session is used.

Examples:
  genchat ask "What is a good name for a fox?"
  genchat ask --mode image "a red fox in the snow"
  genchat ask --mode video --ref fox.png "the fox runs away"
  genchat ask --new "start over"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "text", "request kind: text, image or video")
	askCmd.Flags().StringVar(&askRef, "ref", "", "reference image for a video request")
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session id to use")
	askCmd.Flags().BoolVar(&askNew, "new", false, "start a new session")
}

func askIntent(mode, prompt, ref string) (chat.Intent, error) {
	kind, ok := model.ParseKind(strings.ToLower(mode))
	if !ok {
		return nil, fmt.Errorf("unknown mode %q (use text, image or video)", mode)
	}
	if ref != "" && kind != model.KindVideo {
		return nil, fmt.Errorf("--ref only applies to --mode video")
	}
	switch kind {
	case model.KindImage:
		return chat.GenerateImage{Prompt: prompt}, nil
	case model.KindVideo:
		return chat.GenerateVideo{Prompt: prompt, ReferenceImage: ref}, nil
	default:
		return chat.SendText{Text: prompt}, nil
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return fmt.Errorf("prompt is empty")
	}
	intent, err := askIntent(askMode, prompt, askRef)
	if err != nil {
		return err
	}

	router, _, err := newRouter()
	if err != nil {
		return err
	}
	defer router.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := pickSession(ctx)
	if err != nil {
		return err
	}
	if err := router.Open(ctx, session.ID); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "Cancelling...")
			router.CancelRequests()
		case <-done:
		}
	}()

	if err := router.Dispatch(ctx, intent); err != nil {
		close(done)
		return err
	}
	router.Wait()
	close(done)

	// the request's records are the newest in the session
	msgs, err := store.QueryBySession(context.WithoutCancel(ctx), session.ID)
	if err != nil {
		return fmt.Errorf("load result: %w", err)
	}
	result, ok := lastAssistant(msgs)
	if !ok {
		return errors.New("no result was recorded")
	}

	if result.Status == model.StatusFailed {
		return errors.New(failureText(result, router.View().LastError))
	}
	out := result.Content
	if result.Kind != model.KindText {
		out = storage.LocalPath(out)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func pickSession(ctx context.Context) (*model.Session, error) {
	switch {
	case askSession != "":
		return sessions.Get(ctx, askSession)
	case askNew:
		s, err := sessions.Create(ctx)
		if err != nil {
			return nil, err
		}
		return s, sessions.SaveCurrentSessionID(s.ID)
	default:
		return sessions.Resume(ctx)
	}
}

func lastAssistant(msgs []model.Message) (model.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant {
			return msgs[i], true
		}
	}
	return model.Message{}, false
}

// failureText prefers the router's notice, which carries the underlying
// cause, over the failed record's text.
func failureText(result model.Message, notice string) string {
	if notice != "" {
		return notice
	}
	return result.Content
}
