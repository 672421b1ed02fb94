// Package httpapi serves the read-only analytics endpoints backed by the
// game repository: leaderboard, player stats, and history.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"quiz-arena/observability"
	"quiz-arena/repositories"
	"quiz-arena/services"

	"github.com/go-chi/chi/v5"
)

const defaultLeaderboardSize = 10

type Server struct {
	log     *slog.Logger
	service services.IGameService
	monitor *observability.Monitor
}

func NewServer(log *slog.Logger, service services.IGameService, monitor *observability.Monitor) *Server {
	return &Server{log: log, service: service, monitor: monitor}
}

// Routes mounts the analytics endpoints plus the health check. The
// WebSocket handler is mounted separately by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/monitoring", s.handleMonitoring)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Route("/player/{username}", func(r chi.Router) {
			r.Get("/stats", s.handleStats)
			r.Get("/games", s.handleGames)
			r.Get("/questions", s.handleQuestions)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleMonitoring(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, s.monitor.GetLatest())
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	topN := defaultLeaderboardSize
	if raw := r.URL.Query().Get("top"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			topN = parsed
		}
	}

	entries, err := s.service.Leaderboard(topN)
	if err != nil {
		s.fail(w, "Failed to fetch leaderboard", err)
		return
	}
	s.respond(w, entries)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	stats, found, err := s.service.PlayerStats(username)
	if err != nil {
		s.fail(w, "Failed to fetch player stats", err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		s.respond(w, map[string]string{"error": "Player not found"})
		return
	}
	s.respond(w, stats)
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.PlayerGames(chi.URLParam(r, "username"))
	if err != nil {
		s.fail(w, "Failed to fetch player games", err)
		return
	}
	if games == nil {
		games = []repositories.GameHistory{}
	}
	s.respond(w, games)
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	answers, err := s.service.PlayerQuestions(chi.URLParam(r, "username"))
	if err != nil {
		s.fail(w, "Failed to fetch player questions", err)
		return
	}
	if answers == nil {
		answers = []repositories.AnswerRecord{}
	}
	s.respond(w, answers)
}

func (s *Server) respond(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Warn("Failed to encode response", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, text string, err error) {
	s.log.Error(text, "error", err)
	w.WriteHeader(http.StatusInternalServerError)
	s.respond(w, map[string]string{"error": text})
}
