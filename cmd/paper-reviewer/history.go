// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-reviewer/internal/archive"
	"github.com/pdiddy/paper-reviewer/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List reviews saved with review --archive",
	Long: `History lists archived reviews, newest first. Use "history show <run-id>"
to print the stored snapshot of one run.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print one archived review snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().String("db", "", "archive database (default from config)")
	historyCmd.Flags().Int("limit", 20, "maximum number of reviews to list")
	historyCmd.Flags().String("query", "", "only list reviews whose title or source contains this text")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyShowCmd.Flags().String("format", "json", "snapshot format: json or yaml")

	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openArchive(cmd *cobra.Command) (*archive.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Archive.Path
	}
	return archive.Open(path)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	query, _ := cmd.Flags().GetString("query")
	entries, err := store.List(cmd.Context(), archive.ListOptions{Limit: limit, Query: query})
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return report.JSON(os.Stdout, entries)
	}
	if len(entries) == 0 {
		fmt.Println("No archived reviews.")
		return nil
	}
	fmt.Printf("%-36s  %-16s  %-40s  %-20s  %s\n", "Run", "Started", "Title", "Recommendation", "Status")
	fmt.Println(strings.Repeat("-", 130))
	for _, e := range entries {
		status := "complete"
		if e.Halted {
			status = fmt.Sprintf("partial (%d errors)", e.Errors)
		}
		title := e.Title
		if title == "" {
			title = e.Source
		}
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Printf("%-36s  %-16s  %-40s  %-20s  %s\n",
			e.RunID, e.StartedAt.Local().Format("2006-01-02 15:04"), title, e.Recommendation, status)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	if f != report.FormatJSON && f != report.FormatYAML {
		return fmt.Errorf("archived reviews can be shown as json or yaml, not %s", f)
	}

	store, err := openArchive(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, snap, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s reviewed %s in %s\n", entry.Source, entry.StartedAt.Local().Format(time.RFC1123), entry.Duration.Round(time.Millisecond))
	if f == report.FormatYAML {
		return report.YAML(os.Stdout, snap)
	}
	return report.JSON(os.Stdout, snap)
}
