// Package api serves plan uploads, history and comparisons over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"plandrift/internal/driftcheck"
	"plandrift/internal/explain"
	"plandrift/internal/storage"
	"plandrift/pkg/logging"
)

const (
	defaultHistoryLimit = 50
	shutdownTimeout     = 10 * time.Second
)

// PlanService is the subset of the orchestrator the API needs
type PlanService interface {
	Ingest(ctx context.Context, repo, text string) (string, *driftcheck.DriftResult, error)
	Get(ctx context.Context, planID string) (*storage.PlanRecord, error)
	Explain(ctx context.Context, planID string) (*explain.Explanation, error)
	History(ctx context.Context, repo string, limit int) ([]*storage.PlanRecord, error)
	Compare(ctx context.Context, fromID, toID string) (*driftcheck.DiffResult, error)
}

// Server routes HTTP requests to a PlanService.
type Server struct {
	service      PlanService
	maxPlanBytes int64
	logger       logging.Logger
	router       *mux.Router
}

// IngestResponse is returned for an accepted upload
type IngestResponse struct {
	PlanID string                  `json:"plan_id"`
	Result *driftcheck.DriftResult `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer builds the router. metrics may be nil.
func NewServer(service PlanService, metrics http.Handler, maxPlanBytes int, logger logging.Logger) *Server {
	s := &Server{
		service:      service,
		maxPlanBytes: int64(maxPlanBytes),
		logger:       logger,
		router:       mux.NewRouter(),
	}
	// repo names like owner/repo reach the {id} and {repo} vars as %2F
	s.router.UseEncodedPath()

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if metrics != nil {
		s.router.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/plans", s.handleIngest).Methods(http.MethodPost)
	api.HandleFunc("/plans/{id}", s.handleGetPlan).Methods(http.MethodGet)
	api.HandleFunc("/plans/{id}/explain", s.handleExplain).Methods(http.MethodGet)
	api.HandleFunc("/repos/{repo}/plans", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/compare", s.handleCompare).Methods(http.MethodGet)

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIngest accepts raw plan text as the request body.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	repo := r.URL.Query().Get("repo")
	if repo == "" {
		s.writeError(w, http.StatusBadRequest, "repo query parameter is required")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxPlanBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("plan exceeds the %d byte limit", s.maxPlanBytes))
			return
		}
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	planID, result, err := s.service.Ingest(r.Context(), repo, string(body))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, IngestResponse{PlanID: planID, Result: result})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathVar(w, r, "id")
	if !ok {
		return
	}
	record, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathVar(w, r, "id")
	if !ok {
		return
	}
	exp, err := s.service.Explain(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, exp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.pathVar(w, r, "repo")
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	records, err := s.service.History(r.Context(), repo, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	diff, err := s.service.Compare(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, diff)
}

// pathVar returns the unescaped route variable, writing a 400 if it is malformed.
func (s *Server) pathVar(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v, err := url.PathUnescape(mux.Vars(r)[name])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed %s in path", name))
		return "", false
	}
	return v, true
}

// writeServiceError maps service errors to status codes. Analysis failures
// never reach here because the service substitutes the fallback result.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "plan not found")
	case driftcheck.IsErrorCategory(err, driftcheck.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case driftcheck.IsErrorCategory(err, driftcheck.ErrPlanTooLarge):
		s.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		s.logger.Error("Request failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response: %v", err)
	}
}
