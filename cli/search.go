package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"genchat/model"
	"genchat/storage"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search messages across all sessions",
	Long: `Fuzzy-search the succeeded messages of every session.

Examples:
  genchat search fox
  genchat search "red panda" -n 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "max results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	matches, err := storage.NewSearchIndex(sessions).SearchAllSessions(context.Background(), query)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintln(out, "No matching messages.")
		return nil
	}

	last := ""
	for i, m := range matches {
		if searchLimit > 0 && i >= searchLimit {
			fmt.Fprintf(out, "... and %d more\n", len(matches)-searchLimit)
			break
		}
		if m.SessionID != last {
			fmt.Fprintf(out, "%s (%s)\n", m.SessionTitle, m.SessionID)
			last = m.SessionID
		}
		who := "assistant"
		if m.Role == model.RoleUser {
			who = "you"
		}
		preview, _, _ := strings.Cut(m.Preview, "\n")
		fmt.Fprintf(out, "  [%s] %s: %s\n", m.Timestamp.Local().Format("2006-01-02 15:04"), who, preview)
	}
	return nil
}
