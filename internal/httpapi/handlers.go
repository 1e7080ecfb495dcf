package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"suimu/internal/boundary"
	"suimu/internal/logging"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CommandsResponse lists the served command names.
type CommandsResponse struct {
	Commands []string `json:"commands"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCommands(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, CommandsResponse{Commands: s.svc.Commands()})
}

func (s *Server) handleMaybeMusic(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("csvPath") {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: missing csvPath", boundary.ErrInvalidArgs))
		return
	}
	ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
	result, _ := s.svc.GetMaybeMusicByCSVPath(ctx, query.Get("csvPath"))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("read body: %w", err))
		return
	}

	ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
	result, err := s.svc.Invoke(ctx, command, body)
	switch {
	case errors.Is(err, boundary.ErrUnknownCommand):
		s.writeError(w, r, http.StatusNotFound, err)
		return
	case errors.Is(err, boundary.ErrInvalidArgs):
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	case err != nil:
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Debug("json encode failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Debug("request rejected",
		logging.String("path", r.URL.Path),
		logging.Int("status", status),
		logging.Error(err),
		logging.String(logging.FieldCorrelationID, middleware.GetReqID(r.Context())),
	)
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
