// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/export"
	"github.com/pdiddy/research-assistant/internal/research"
	"github.com/pdiddy/research-assistant/internal/store"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const maxRequestBody = 64 << 10

// ResearchRequest is the body of POST /api/research.
type ResearchRequest struct {
	Topic string `json:"topic"`
	types.ResearchOptions
}

// ListResponse is the body of GET /api/research.
type ListResponse struct {
	Summaries []types.ResearchSummary `json:"summaries"`
	Limit     int                     `json:"limit"`
	Offset    int                     `json:"offset"`
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req ResearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	topic, err := types.ValidateTopic(req.Topic)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := req.ResearchOptions.Validate()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The run outlives a dropped client connection; only the run timeout
	// bounds it.
	ctx := context.WithoutCancel(r.Context())
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	summary, err := s.runner.Run(ctx, topic, opts)
	if err != nil {
		s.logger.Error("research failed", zap.String("topic", topic), zap.Error(err))
		var perr *research.PipelineError
		if errors.As(err, &perr) {
			s.respondError(w, http.StatusBadGateway, perr.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// A finished run is returned even when it cannot be kept.
	if _, err := s.store.Save(ctx, summary); err != nil {
		s.logger.Error("save summary failed", zap.String("topic", topic), zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListOptions{Query: q.Get("q")}
	var err error
	if opts.Limit, err = intParam(q.Get("limit")); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if opts.Offset, err = intParam(q.Get("offset")); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	if opts.Limit <= 0 {
		opts.Limit = store.DefaultListLimit
	}

	summaries, err := s.store.List(r.Context(), opts)
	if err != nil {
		s.logger.Error("list summaries failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to list summaries")
		return
	}
	if summaries == nil {
		summaries = []types.ResearchSummary{}
	}
	s.respondJSON(w, http.StatusOK, ListResponse{Summaries: summaries, Limit: opts.Limit, Offset: opts.Offset})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, summary, format); err != nil {
		s.logger.Error("export failed", zap.Int64("id", summary.ID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"research-%d.%s\"", summary.ID, format.Extension()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// lookup resolves the {id} URL parameter and writes the error response
// itself when it fails.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*types.ResearchSummary, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}
	summary, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "summary not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("get summary failed", zap.Int64("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load summary")
		return nil, false
	}
	return summary, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
