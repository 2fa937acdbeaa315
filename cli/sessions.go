package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"genchat/storage"
)

var (
	deleteForce bool
	exportOut   string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and manage chat sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recently active first",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a session",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSessionsRename,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session and its messages",
	Long: `Delete a session and all of its messages.

Requires confirmation unless --force is used. Downloaded media files are kept.

Examples:
  genchat sessions delete 3f2a9c1e-...
  genchat sessions delete 3f2a9c1e-... --force`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsDelete,
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsExport,
}

func init() {
	sessionsDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
	sessionsExportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default: ~/Downloads/genchat-session-<title>-<time>.json)")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	list, err := sessions.List(context.Background())
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions yet.")
		return nil
	}

	current, _ := sessions.LoadCurrentSessionID()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tTITLE\tUPDATED\tLAST MESSAGE")
	for _, s := range list {
		marker := ""
		if s.ID == current {
			marker = "*"
		}
		last, _, _ := strings.Cut(s.LastMessage, "\n")
		if r := []rune(last); len(r) > 50 {
			last = string(r[:49]) + "…"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, s.ID, s.Title, s.UpdatedAt.Local().Format("2006-01-02 15:04"), last)
	}
	return w.Flush()
}

func runSessionsRename(cmd *cobra.Command, args []string) error {
	title := strings.TrimSpace(strings.Join(args[1:], " "))
	if title == "" {
		return fmt.Errorf("title is empty")
	}
	if err := sessions.Rename(context.Background(), args[0], title); err != nil {
		return fmt.Errorf("rename session: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", args[0], title)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := sessions.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	if !deleteForce {
		fmt.Printf("About to delete: %s (%s)\n", s.Title, s.ID)
		fmt.Print("\nContinue? [y/N]: ")

		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := sessions.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", s.Title)
	return nil
}

func runSessionsExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := sessions.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	path := exportOut
	if path == "" {
		path = storage.GenerateExportPath(s.Title)
	}
	if err := sessions.ExportToJSON(ctx, s.ID, path); err != nil {
		return fmt.Errorf("export session: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", s.Title, path)
	return nil
}
