// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/progress"
	"github.com/pdiddy/research-assistant/internal/research"
	"github.com/pdiddy/research-assistant/internal/server"
	"github.com/pdiddy/research-assistant/internal/store"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and progress websocket",
	Long: `Serve exposes the research pipeline over HTTP:

  POST /api/research                 run a topic (standard or deep)
  GET  /api/research                 list saved summaries
  GET  /api/research/{id}            fetch one summary
  GET  /api/research/{id}/export     export as markdown, csl, bibtex or json
  GET  /ws                           progress events (optional ?run_id=)
  GET  /health, /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.Open(cfg.Storage)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		hub := progress.NewHub(logger)
		var b research.Broadcaster = hub
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			b = progress.Multi{hub, progress.NewPrinter(os.Stderr)}
		}
		pipeline, err := newPipeline(b, true)
		if err != nil {
			return err
		}

		srv := server.NewServer(pipeline, st, hub, cfg.Server, cfg.Research.RunTimeout, logger)
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

// newPipeline builds the research pipeline from cfg. Only deep research uses
// the chat capability, so a missing chat key is an error only when
// requireChat is set.
func newPipeline(b research.Broadcaster, requireChat bool) (*research.Pipeline, error) {
	search, err := llm.NewAnswerer(cfg.Search, logger)
	if err != nil {
		return nil, err
	}

	var chat llm.ChatCompleter
	if requireChat || cfg.Chat.APIKey != "" {
		chat, err = llm.NewChat(cfg.Chat, logger)
		if err != nil {
			return nil, err
		}
	}

	models := research.Models{
		Chat:       cfg.Chat.Model,
		Search:     cfg.Search.Model,
		DeepSearch: cfg.Search.DeepModel,
	}
	logger.Debug("pipeline ready",
		zap.String("chat_provider", string(cfg.Chat.Provider)),
		zap.String("chat_model", models.Chat),
		zap.String("search_model", models.Search),
		zap.String("deep_model", models.DeepSearch))
	return research.New(chat, search, b, models, cfg.Research, research.WithLogger(logger)), nil
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (default from config: 127.0.0.1)")
	serveCmd.Flags().Int("port", 0, "listen port (default from config: 8080)")
	serveCmd.Flags().BoolP("verbose", "v", false, "also print progress events of every run to stderr")
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}
