package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/worldwalk/georoutes/game/config"
	"github.com/worldwalk/georoutes/game/daily"
	"github.com/worldwalk/georoutes/game/service"
	"github.com/worldwalk/georoutes/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.RouteService
	daily   *daily.Challenge
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. The daily challenge is optional; when
// nil the /api/daily routes are not registered.
func NewServer(routeService service.RouteService, challenge *daily.Challenge, hub *websocket.Hub) *Server {
	s := &Server{
		service: routeService,
		daily:   challenge,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Round operations
	api.HandleFunc("/sessions/{id}/progress", s.handleProgress).Methods("GET")
	api.HandleFunc("/sessions/{id}/guess", s.handleGuess).Methods("POST")
	api.HandleFunc("/sessions/{id}/undo", s.handleUndo).Methods("POST")
	api.HandleFunc("/sessions/{id}/hint", s.handleHint).Methods("POST")
	api.HandleFunc("/sessions/{id}/give-up", s.handleGiveUp).Methods("POST")
	api.HandleFunc("/sessions/{id}/timeout", s.handleTimeout).Methods("POST")
	api.HandleFunc("/sessions/{id}/new-round", s.handleNewRound).Methods("POST")

	// Route packs and geography
	api.HandleFunc("/packs", s.handleListPacks).Methods("GET")
	api.HandleFunc("/packs", s.handleCreatePack).Methods("POST")
	api.HandleFunc("/packs/{name}", s.handleGetPack).Methods("GET")
	api.HandleFunc("/countries", s.handleCountries).Methods("GET")

	// Daily challenge
	if s.daily != nil {
		api.HandleFunc("/daily", s.handleDailyRoute).Methods("GET")
		api.HandleFunc("/daily/results", s.handleDailySubmit).Methods("POST")
		api.HandleFunc("/daily/leaderboard", s.handleDailyLeaderboard).Methods("GET")
		api.HandleFunc("/daily/streak/{player}", s.handleDailyStreak).Methods("GET")
	}

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// broadcastProgress pushes the session's current progress to any WebSocket
// spectators. Best effort; a session that just ended its round still has
// readable progress.
func (s *Server) broadcastProgress(ctx context.Context, sessionID string) {
	if s.hub == nil {
		return
	}
	progress, err := s.service.Progress(ctx, sessionID)
	if err != nil {
		return
	}
	s.hub.BroadcastToSession(sessionID, progress)
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PackID string `json:"pack_id,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	session, err := s.service.CreateSession(r.Context(), req.PackID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else { // "accessed"
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj) // desc
	})

	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	err := s.service.DeleteSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Round Operation Handlers

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	progress, err := s.service.Progress(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Country string `json:"country"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Country) == "" {
		respondError(w, http.StatusBadRequest, "country is required")
		return
	}

	result, err := s.service.Guess(r.Context(), sessionID, req.Country)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	s.broadcastProgress(r.Context(), sessionID)

	log.Info().
		Str("session", sessionID).
		Str("country", req.Country).
		Str("action", string(result.Action)).
		Msg("guess")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Undo(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	s.broadcastProgress(r.Context(), sessionID)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Hint(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	s.broadcastProgress(r.Context(), sessionID)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGiveUp(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.GiveUp(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	s.broadcastProgress(r.Context(), sessionID)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleTimeout(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.Timeout(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	s.broadcastProgress(r.Context(), sessionID)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.NewRound(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	s.broadcastProgress(r.Context(), sessionID)

	respondJSON(w, http.StatusOK, session)
}

// Pack Handlers

func (s *Server) handleListPacks(w http.ResponseWriter, r *http.Request) {
	packs, err := s.service.ListPacks(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, packs)
}

func (s *Server) handleGetPack(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	// Remove .json extension if present
	name = strings.TrimSuffix(name, ".json")

	pack, err := s.service.LoadPack(r.Context(), name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, pack)
}

func (s *Server) handleCreatePack(w http.ResponseWriter, r *http.Request) {
	var pack config.RoutePack

	if err := json.NewDecoder(r.Body).Decode(&pack); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if pack.Name == "" {
		respondError(w, http.StatusBadRequest, "Pack name is required")
		return
	}

	if err := s.service.SavePack(r.Context(), pack.Name, &pack); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save pack: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Pack saved successfully",
		"pack_id": pack.Name,
	})
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	countries := s.service.Countries(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(countries),
		"countries": countries,
	})
}

// Daily Challenge Handlers

func (s *Server) handleDailyRoute(w http.ResponseWriter, r *http.Request) {
	date, err := dailyDate(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	route, err := s.daily.RouteFor(date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, route)
}

func (s *Server) handleDailySubmit(w http.ResponseWriter, r *http.Request) {
	date, err := dailyDate(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var sub daily.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if sub.PlayerID == "" {
		respondError(w, http.StatusBadRequest, "player_id is required")
		return
	}

	result, err := s.daily.Submit(r.Context(), date, sub)
	if err != nil {
		if errors.Is(err, daily.ErrAlreadyPlayed) {
			respondError(w, http.StatusConflict, "already played today's route")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date, err := dailyDate(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	board, err := s.daily.Leaderboard(r.Context(), date, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":    daily.DateKey(date),
		"count":   len(board),
		"results": board,
	})
}

func (s *Server) handleDailyStreak(w http.ResponseWriter, r *http.Request) {
	player := mux.Vars(r)["player"]

	streak, err := s.daily.Streak(r.Context(), player)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player_id": player,
		"streak":    streak,
	})
}

// dailyDate picks the challenge date from the ?date= query parameter,
// defaulting to the current UTC day.
func dailyDate(r *http.Request) (time.Time, error) {
	q := r.URL.Query().Get("date")
	if q == "" {
		return time.Now().UTC(), nil
	}
	date, err := time.Parse("2006-01-02", q)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", q)
	}
	return date, nil
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	_, err := s.service.GetSession(context.Background(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	// Upgrade to WebSocket
	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
