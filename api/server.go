package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ankitpasayat/confident-trivia/game/engine"
	"github.com/ankitpasayat/confident-trivia/game/questions"
	"github.com/ankitpasayat/confident-trivia/game/service"
	"github.com/ankitpasayat/confident-trivia/game/session"
	"github.com/ankitpasayat/confident-trivia/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil when realtime push is
// disabled.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Lifecycle
	api.HandleFunc("/games", s.handleCreateGame).Methods("POST")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	// Join goes by code, not ID, so it must be registered before {id}.
	api.HandleFunc("/games/join", s.handleJoinGame).Methods("POST")
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleDeleteGame).Methods("DELETE")

	// Gameplay
	api.HandleFunc("/games/{id}/start", s.handleStartGame).Methods("POST")
	api.HandleFunc("/games/{id}/phase", s.handleAdvancePhase).Methods("POST")
	api.HandleFunc("/games/{id}/vote", s.handleSubmitVote).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
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

// respondServiceError maps domain errors onto HTTP status codes: unknown
// games are 404, malformed input is 400, rule violations are 409, and a
// question-source outage is 502.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrEmptyName), errors.Is(err, engine.ErrUnknownPlayer):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrInvalidPhase),
		errors.Is(err, engine.ErrGameFull),
		errors.Is(err, engine.ErrNotEnoughPlayers),
		errors.Is(err, engine.ErrTokenUnavailable):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, questions.ErrUnavailable):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// Lifecycle Handlers

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HostName string `json:"hostName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.CreateGame(r.Context(), req.HostName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[API] POST /games code=%s host=%s", result.Game.Code, result.PlayerID)
	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code       string `json:"code"`
		PlayerName string `json:"playerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	result, err := s.service.JoinGame(r.Context(), req.Code, req.PlayerName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[API] POST /games/join code=%s player=%s", req.Code, result.PlayerID)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.service.ListGames(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Most recently active first.
	sort.Slice(games, func(i, j int) bool {
		return games[i].LastActivity.After(games[j].LastActivity)
	})

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(games) {
			games = games[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	game, err := s.service.GetGame(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	if err := s.service.DeleteGame(r.Context(), gameID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Game %s deleted", gameID),
	})
}

// Gameplay Handlers

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	game, err := s.service.StartGame(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[API] POST /games/%s/start rounds=%d players=%d", gameID, game.TotalRounds, len(game.Players))
	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleAdvancePhase(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req struct {
		Phase string `json:"phase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	target, err := engine.ParsePhase(req.Phase)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := s.service.AdvancePhase(r.Context(), gameID, target)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[API] POST /games/%s/phase -> %s", gameID, game.CurrentPhase)
	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req struct {
		PlayerID string         `json:"playerId"`
		Answer   *engine.Answer `json:"answer"`
		Token    int            `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" || req.Answer == nil {
		respondError(w, http.StatusBadRequest, "playerId and answer are required")
		return
	}

	result, err := s.service.SubmitVote(r.Context(), gameID, req.PlayerID, *req.Answer, req.Token)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[API] POST /games/%s/vote player=%s token=%d settled=%t", gameID, req.PlayerID, req.Token, result.RoundSettled)
	respondJSON(w, http.StatusOK, result)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, "gameId parameter required", http.StatusBadRequest)
		return
	}

	// Verify the game exists before upgrading.
	if _, err := s.service.GetGame(r.Context(), gameID); err != nil {
		http.Error(w, "Invalid game", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, gameID, r.URL.Query().Get("playerId"))
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
