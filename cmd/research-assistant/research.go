// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/export"
	"github.com/pdiddy/research-assistant/internal/progress"
	"github.com/pdiddy/research-assistant/internal/store"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [topic...]",
	Short: "Research a topic and print the cited summary",
	Long: `Research sends the topic to the search-augmented answering service and prints
the summary with its numbered reference list. With --deep, the query is first
rewritten by the chat model and the result is formatted with a title.

Progress is written to stderr; the summary goes to stdout in the selected
export format. The summary is saved to the configured store.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, err := types.ValidateTopic(strings.Join(args, " "))
		if err != nil {
			return err
		}

		deep, _ := cmd.Flags().GetBool("deep")
		maxTokens, _ := cmd.Flags().GetInt("max-tokens")
		domains, _ := cmd.Flags().GetStringSlice("domain")
		formatName, _ := cmd.Flags().GetString("format")
		noSave, _ := cmd.Flags().GetBool("no-save")

		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}
		opts, err := types.ResearchOptions{
			UseDeepResearch: deep,
			MaxTokens:       maxTokens,
			SearchDomains:   domains,
		}.Validate()
		if err != nil {
			return err
		}

		pipeline, err := newPipeline(progress.NewPrinter(os.Stderr), deep)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if cfg.Research.RunTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Research.RunTimeout)
			defer cancel()
		}

		summary, err := pipeline.Run(ctx, topic, opts)
		if err != nil {
			return err
		}

		if !noSave {
			if err := saveSummary(ctx, summary); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}
		if summary.IsDegraded() {
			fmt.Fprintf(os.Stderr, "Degraded stages: %v\n", summary.Degraded)
		}
		return export.Write(os.Stdout, summary, format)
	},
}

func saveSummary(ctx context.Context, summary *types.ResearchSummary) error {
	st, err := store.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	id, err := st.Save(ctx, summary)
	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	if cfg.Storage.Backend == types.StorageSQLite {
		fmt.Fprintf(os.Stderr, "Saved summary #%d to %s\n", id, cfg.Storage.Path)
	}
	return nil
}

func init() {
	researchCmd.Flags().Bool("deep", false, "run deep research: query rewrite, deep model, formatting")
	researchCmd.Flags().Int("max-tokens", 0, "research output budget (default from config)")
	researchCmd.Flags().StringSlice("domain", nil, "restrict sources to these domains (repeatable)")
	researchCmd.Flags().String("format", "markdown", "output format: markdown, csl, bibtex, or json")
	researchCmd.Flags().Bool("no-save", false, "do not save the summary to the store")

	rootCmd.AddCommand(researchCmd)
}
