package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/persondir/persondir/internal/codec"
	"github.com/persondir/persondir/internal/metrics"
	"github.com/persondir/persondir/internal/models"
	"github.com/persondir/persondir/internal/store"
)

// Server is an HTTP API server that exposes person directory operations.
type Server struct {
	store     store.Store
	codec     codec.Codec
	logger    *slog.Logger
	authToken string // empty = no auth required
	pageSize  uint64
	source    string
}

// NewServer creates a new Server with the given dependencies.
func NewServer(st store.Store, c codec.Codec, logger *slog.Logger, authToken string, pageSize uint64) *Server {
	return &Server{
		store:     st,
		codec:     c,
		logger:    logger,
		authToken: authToken,
		pageSize:  pageSize,
		source:    "api",
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check — no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Person CRUD endpoints — wrapped with auth middleware.
	mux.HandleFunc("POST /v1/people", s.auth(s.handleCreatePerson))
	mux.HandleFunc("GET /v1/people", s.auth(s.handleListPeople))
	mux.HandleFunc("GET /v1/people/{id}", s.auth(s.handleGetPerson))
	mux.HandleFunc("DELETE /v1/people/{id}", s.auth(s.handleDeletePerson))
	mux.HandleFunc("GET /v1/stats", s.auth(s.handleStats))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			metrics.Inc(metrics.AuthFailures)
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createPersonRequest is the body accepted by POST /v1/people.
// Name and Age are pointers so that a missing field is distinguishable
// from a zero value; both are required. FavouriteFood stays optional.
type createPersonRequest struct {
	Name          *string `json:"name"`
	Age           *int64  `json:"age"`
	FavouriteFood *string `json:"favourite_food"`
}

// createPersonResponse is returned by POST /v1/people.
type createPersonResponse struct {
	ID     string `json:"id"`
	Stored bool   `json:"stored"`
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "reading request body failed")
		return
	}

	var req createPersonRequest
	if err := s.codec.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == nil {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Age == nil {
		s.writeError(w, http.StatusBadRequest, "age is required")
		return
	}
	if *req.Age < 0 || *req.Age > math.MaxUint32 {
		s.writeError(w, http.StatusBadRequest, "age must be a non-negative integer no greater than 4294967295")
		return
	}

	now := time.Now().UTC()
	rec := models.Record{
		ID: uuid.NewString(),
		Person: models.Person{
			Name:          *req.Name,
			Age:           uint32(*req.Age),
			FavouriteFood: req.FavouriteFood,
		},
		Source:    s.source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Upsert(r.Context(), rec); err != nil {
		s.logger.Error("failed to store person", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to store person")
		return
	}

	metrics.Inc(metrics.PeopleStored)
	s.writeJSON(w, http.StatusOK, createPersonResponse{ID: rec.ID, Stored: true})
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "person not found")
			return
		}
		s.logger.Error("failed to get person", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get person")
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "person not found")
			return
		}
		s.logger.Error("failed to delete person", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete person")
		return
	}

	metrics.Inc(metrics.PeopleDeleted)
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// listPeopleResponse is returned by GET /v1/people.
type listPeopleResponse struct {
	People     []models.Record `json:"people"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	limit := s.pageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	cursor := r.URL.Query().Get("cursor")

	people, next, err := s.store.List(r.Context(), limit, cursor)
	if err != nil {
		s.logger.Error("failed to list people", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list people")
		return
	}

	if people == nil {
		people = []models.Record{}
	}

	metrics.Inc(metrics.PeopleListed)
	s.writeJSON(w, http.StatusOK, listPeopleResponse{People: people, NextCursor: next})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to get stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

// --- helpers ---

// writeJSON encodes v through the codec and writes it to w with the given
// status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := s.codec.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.codec.ContentType())
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
