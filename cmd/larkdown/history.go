// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/larkdown/internal/store"
	"github.com/meshintel/larkdown/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query past exports (list, search, clear, export)",
	Long: `History manages the local record of past exports. Use subcommands to
list recent exports, search exported Markdown with full-text search,
clear the record, or dump it to YAML or JSON.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent exports, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	s, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := s.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	printRecords(records)
	return nil
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over exported titles and Markdown",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySearch,
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	s, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := s.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}
	printRecords(records)
	return nil
}

// --- clear subcommand ---

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all history records",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Clear(context.Background()); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Dump the history to a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	s, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	path := args[0]
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = "yaml"
		if strings.HasSuffix(path, ".json") {
			format = "json"
		}
	}

	switch format {
	case "yaml":
		err = s.ExportYAML(context.Background(), path)
	case "json":
		err = s.ExportJSON(context.Background(), path)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported history to %s\n", path)
	return nil
}

// --- shared helpers ---

func openHistory(cmd *cobra.Command) (*store.Store, error) {
	dir, _ := cmd.Flags().GetString("history-dir")
	cfg := historyConfig("exports")
	if dir != "" {
		cfg.Dir = dir
	}
	return store.NewStore(cfg)
}

func printRecords(records []types.ExportRecord) {
	if len(records) == 0 {
		fmt.Println("No exports found.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-30s  %-19s  %8s  %s\n",
		"Doc ID", "Title", "Exported", "Size", "File")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, r := range records {
		fmt.Fprintf(os.Stdout, "%-20s  %-30s  %-19s  %8d  %s\n",
			truncateDisplay(r.DocID, 20), truncateDisplay(r.Title, 30),
			r.ExportedAt.Local().Format("2006-01-02 15:04:05"), r.Size, r.FilePath)
	}

	fmt.Fprintf(os.Stdout, "\n%d record(s)\n", len(records))
}

// truncateDisplay shortens s to at most max runes for column display, marking
// the cut with "...". Counting runes keeps multibyte titles intact.
func truncateDisplay(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("history-dir", "", "directory holding history.db (default: the export output directory)")

	historyListCmd.Flags().Int("limit", 0, "maximum records to show (0 = use default)")
	historySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historyExportCmd.Flags().String("format", "", "export format: yaml or json (default: from file extension)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
