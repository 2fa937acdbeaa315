package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"genchat/provider"
)

var checkTimeout time.Duration

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the provider connection and configured models",
	Long: `Connect to the configured provider and report whether the configured
models are available.

Providers that cannot list models are only pinged.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 15*time.Second, "connection timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	out := cmd.OutOrStdout()
	res, err := provider.Check(ctx, cfg.ProviderConfig(), logger)
	if res != nil {
		fmt.Fprintf(out, "Provider: %s (%s)\n", res.Type, res.BaseURL)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Connection: ok")

	if res.Models == nil {
		if res.ModelsErr != nil {
			fmt.Fprintf(out, "Models: could not list (%v)\n", res.ModelsErr)
		}
		return nil
	}

	opts := cfg.GenerationOptions()
	missing := 0
	for _, m := range []struct{ role, name string }{
		{"text", opts.TextModel},
		{"image", opts.ImageModel},
		{"video (text)", opts.VideoTextModel},
		{"video (image)", opts.VideoImageModel},
	} {
		status := "ok"
		if !res.HasModel(m.name) {
			status = "not listed"
			missing++
		}
		fmt.Fprintf(out, "  %-14s %s: %s\n", m.role, m.name, status)
	}
	if missing > 0 {
		fmt.Fprintf(out, "%d configured model(s) were not listed by the provider.\n", missing)
	}
	return nil
}
