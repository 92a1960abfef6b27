// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/export"
	"github.com/pdiddy/research-assistant/internal/store"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a saved summary",
	Long: `Export renders a saved summary as Markdown, or its reference list as CSL-YAML
or BibTeX for reference managers. Summaries only outlive the process with the
sqlite storage backend.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		formatName, _ := cmd.Flags().GetString("format")
		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}
		if cfg.Storage.Backend != types.StorageSQLite {
			fmt.Fprintln(os.Stderr, "warning: the memory store is empty in a new process; use --storage sqlite")
		}

		st, err := store.Open(cfg.Storage)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		summary, err := st.Get(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("summary #%d not found", id)
		}
		if err != nil {
			return err
		}
		return export.Write(os.Stdout, summary, format)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved summaries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := store.Open(cfg.Storage)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		summaries, err := st.List(cmd.Context(), store.ListOptions{Query: query, Limit: limit})
		if err != nil {
			return err
		}
		for _, s := range summaries {
			fmt.Printf("%4d  %s  %-8s  %s\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.Mode, s.Title)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "markdown", "output format: markdown, csl, bibtex, or json")
	listCmd.Flags().String("query", "", "filter by topic or title")
	listCmd.Flags().Int("limit", store.DefaultListLimit, "maximum number of summaries")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(listCmd)
}
