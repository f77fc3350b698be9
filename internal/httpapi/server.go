// Package httpapi exposes session control and walk history as a local JSON
// API for a browser front end.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	sessiondto "pacer/internal/modules/session/dto"
	walkdto "pacer/internal/modules/walk/dto"
	apperrors "pacer/internal/platform/errors"
)

const shutdownGrace = 5 * time.Second

type SessionPort interface {
	Start(ctx context.Context) (sessiondto.StartOutput, error)
	Stop(ctx context.Context) (sessiondto.StopOutput, error)
	Readout(ctx context.Context) (sessiondto.ReadoutOutput, error)
}

type WalksPort interface {
	Filter(ctx context.Context, period string) ([]walkdto.WalkOutput, error)
	Delete(ctx context.Context, index int) (walkdto.DeleteOutput, error)
	DeleteByID(ctx context.Context, walkID string) (walkdto.DeleteOutput, error)
	Stats(ctx context.Context, period string) (walkdto.StatsOutput, error)
	Chart(ctx context.Context, period string) ([]walkdto.ChartPoint, error)
}

type Server struct {
	session SessionPort
	walks   WalksPort
	logger  *slog.Logger
	router  *mux.Router
}

func New(session SessionPort, walks WalksPort, logger *slog.Logger) *Server {
	s := &Server{session: session, walks: walks, logger: logger, router: mux.NewRouter()}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/session/start", s.startSession).Methods(http.MethodPost)
	api.HandleFunc("/session/stop", s.stopSession).Methods(http.MethodPost)
	api.HandleFunc("/session", s.readout).Methods(http.MethodGet)
	api.HandleFunc("/walks", s.listWalks).Methods(http.MethodGet)
	api.HandleFunc("/walks/id/{id}", s.deleteWalkByID).Methods(http.MethodDelete)
	api.HandleFunc("/walks/{index:[0-9-]+}", s.deleteWalk).Methods(http.MethodDelete)
	api.HandleFunc("/stats", s.stats).Methods(http.MethodGet)
	api.HandleFunc("/chart", s.chart).Methods(http.MethodGet)
	return s
}

// Handler wraps the router with request logging and permissive CORS for a
// locally served front end.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.logging(s.router))
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.logger.Info("http api stopped")
	return nil
}

// ─── handlers ────────────────────────────────────────────────────────────────

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	out, err := s.session.Start(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) stopSession(w http.ResponseWriter, r *http.Request) {
	out, err := s.session.Stop(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) readout(w http.ResponseWriter, r *http.Request) {
	out, err := s.session.Readout(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listWalks(w http.ResponseWriter, r *http.Request) {
	out, err := s.walks.Filter(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if out == nil {
		out = []walkdto.WalkOutput{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteWalk(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.fail(w, fmt.Errorf("%w: index must be an integer", apperrors.ErrInvalidInput))
		return
	}
	out, err := s.walks.Delete(r.Context(), index)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteWalkByID(w http.ResponseWriter, r *http.Request) {
	out, err := s.walks.DeleteByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	out, err := s.walks.Stats(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) chart(w http.ResponseWriter, r *http.Request) {
	out, err := s.walks.Chart(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		s.fail(w, err)
		return
	}
	if out == nil {
		out = []walkdto.ChartPoint{}
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── plumbing ────────────────────────────────────────────────────────────────

type errorBody struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrInvalidIndex):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrActiveSessionExists), errors.Is(err, apperrors.ErrNoActiveSession):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
