// Package cli provides the command-line interface for genchat.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"genchat/chat"
	"genchat/config"
	"genchat/generation"
	"genchat/provider"
	"genchat/storage"
	"genchat/ui"
)

var (
	// Version is set at build time.
	Version = "v0.1.0"

	// Global flags
	verbose bool

	// Loaded in PersistentPreRunE
	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
	store    *storage.Store
	sessions *storage.SessionStorage
)

var rootCmd = &cobra.Command{
	Use:   "genchat",
	Short: "Chat with a model and generate images and videos from the terminal",
	Long: `genchat is a conversational client for OpenAI-compatible generation APIs.

Text prompts get a chat reply. /image and /video turn a prompt, together with
a summary of the conversation so far, into generated media. Images are saved
under the data directory; video jobs are polled until they finish.

Run without a subcommand to open the interactive chat.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		if verbose {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			closeLog = func() error { return nil }
		} else {
			logger, closeLog = config.SetupLogger(cfg.DataDir(), cfg.Debug, cfg.LogLevel)
		}
		slog.SetDefault(logger)

		store, err = storage.Open(cfg.DataDir(), logger)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		sessions = storage.NewSessionStorage(store, cfg.DataDir())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			if err := store.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if closeLog != nil {
			if err := closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log: %v\n", err)
			}
		}
	},
	RunE: runChat,
}

// newRouter validates the provider settings and wires the generation
// pipeline behind a router.
func newRouter() (*chat.Router, *generation.Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	gen, err := provider.NewProvider(cfg.ProviderConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("init provider: %w", err)
	}
	media, err := storage.NewMediaStore(cfg.DataDir(), nil, logger)
	if err != nil {
		return nil, nil, err
	}

	orch := generation.New(gen, store, media, cfg.GenerationOptions(), logger)
	return chat.NewRouter(orch, store, sessions, logger), orch, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	router, orch, err := newRouter()
	if err != nil {
		return err
	}
	defer router.Close()

	ctx := context.Background()
	session, err := sessions.Resume(ctx)
	if err != nil {
		return fmt.Errorf("resume session: %w", err)
	}
	if err := router.Open(ctx, session.ID); err != nil {
		return err
	}

	app := ui.NewAppView(ui.Deps{
		Router:     router,
		Sessions:   sessions,
		Search:     storage.NewSearchIndex(sessions),
		Logger:     logger,
		Version:    Version,
		StaleAfter: orch.Options().VideoTimeout(),
	})
	defer app.Close()

	logger.Info("starting chat", "session", session.ID, "provider", cfg.Provider.Type)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(checkCmd)
}
