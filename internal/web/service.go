package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/board"
	"github.com/bendemeyer/Naive-Chess-Engine/internal/config"
	"github.com/bendemeyer/Naive-Chess-Engine/internal/game"
	"github.com/bendemeyer/Naive-Chess-Engine/internal/search"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type Service struct {
	store  *Store
	config *config.Config
	hub    *Hub
}

func NewService(config *config.Config, hub *Hub) *Service {
	return &Service{
		store:  NewStore(),
		config: config,
		hub:    hub,
	}
}

// Router wires every endpoint of the analysis API.
func (s *Service) Router() *mux.Router {
	router := mux.NewRouter()

	// Add CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.HealthHandler).Methods("GET")
	api.HandleFunc("/games", s.CreateGameHandler).Methods("POST")
	api.HandleFunc("/games/{id}", s.GetGameHandler).Methods("GET")
	api.HandleFunc("/games/{id}", s.DeleteGameHandler).Methods("DELETE")
	api.HandleFunc("/games/{id}/suggestions", s.SuggestionsHandler).Methods("GET")
	api.HandleFunc("/games/{id}/moves", s.ListMovesHandler).Methods("GET")
	api.HandleFunc("/games/{id}/moves", s.MakeMoveHandler).Methods("POST")
	api.HandleFunc("/games/{id}/tree", s.TreeHandler).Methods("GET")
	if s.hub != nil {
		api.HandleFunc("/ws", s.WebSocketHandler(s.hub)).Methods("GET")
	}

	// Preflight requests for any API path; the middleware answers them
	api.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	return router
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, gameID string, err error) {
	switch {
	case errors.Is(err, ErrGameNotFound):
		http.Error(w, "Game not found", http.StatusNotFound)
	case errors.Is(err, game.ErrIllegalMove), errors.Is(err, board.ErrInvalidSquare):
		http.Error(w, "Invalid move: "+err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Str("gameID", gameID).Msg("Request failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"games":  s.store.Len(),
	})
}

// ErrLimitExceeded rejects a request that would search more than the server allows.
var ErrLimitExceeded = errors.New("search limit exceeds the server's configured limit")

type CreateGameRequest struct {
	FEN        string `json:"fen,omitempty"`
	MaxDepth   *int   `json:"maxDepth,omitempty"`
	MaxBreadth *int   `json:"maxBreadth,omitempty"`
}

type GameResponse struct {
	ID         string      `json:"id"`
	Status     game.Status `json:"status"`
	History    []string    `json:"history"`
	LegalMoves []string    `json:"legalMoves"`
}

func (s *Service) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	maxDepth, err := requestLimit(req.MaxDepth, s.config.Search.MaxDepth)
	if err != nil {
		http.Error(w, "maxDepth: "+err.Error(), http.StatusBadRequest)
		return
	}
	maxBreadth, err := requestLimit(req.MaxBreadth, s.config.Search.MaxBreadth)
	if err != nil {
		http.Error(w, "maxBreadth: "+err.Error(), http.StatusBadRequest)
		return
	}
	opts := []search.Option{
		search.WithLogger(log.Logger),
		search.WithWorkers(s.config.Search.Workers),
	}

	var g *game.Game
	if req.FEN != "" {
		g, err = game.NewFromFEN(req.FEN, maxDepth, maxBreadth, opts...)
	} else {
		g, err = game.New(maxDepth, maxBreadth, opts...)
	}
	if err != nil {
		log.Error().Err(err).Str("fen", req.FEN).Msg("Failed to create game")
		http.Error(w, "Failed to create game: "+err.Error(), http.StatusBadRequest)
		return
	}

	id := s.store.Add(g)
	log.Info().
		Str("gameID", id).
		Int("maxDepth", maxDepth).
		Int("maxBreadth", maxBreadth).
		Int("treeSize", g.TreeSize()).
		Msg("Game created")

	writeJSON(w, http.StatusCreated, describeGame(id, g))
}

// requestLimit applies a requested search limit. Requests may only tighten a
// configured limit; 0 means unbounded on both sides.
func requestLimit(requested *int, configured int) (int, error) {
	if requested == nil {
		return configured, nil
	}
	limit := *requested
	if limit < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrLimitExceeded, limit)
	}
	if configured > 0 && (limit == 0 || limit > configured) {
		return 0, fmt.Errorf("%w: %d, allowed 1 to %d", ErrLimitExceeded, limit, configured)
	}
	return limit, nil
}

func describeGame(id string, g *game.Game) GameResponse {
	history := g.History()
	moves := g.LegalMoves()
	resp := GameResponse{
		ID:         id,
		Status:     g.Status(),
		History:    make([]string, len(history)),
		LegalMoves: make([]string, len(moves)),
	}
	for i, m := range history {
		resp.History[i] = m.String()
	}
	for i, m := range moves {
		resp.LegalMoves[i] = m.String()
	}
	return resp
}

func (s *Service) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var resp GameResponse
	err := s.store.With(gameID, func(g *game.Game) error {
		resp = describeGame(gameID, g)
		return nil
	})
	if err != nil {
		writeError(w, gameID, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) DeleteGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	if !s.store.Delete(gameID) {
		writeError(w, gameID, ErrGameNotFound)
		return
	}
	if s.hub != nil {
		s.hub.CloseGame(gameID)
	}
	log.Info().Str("gameID", gameID).Msg("Game deleted")
	w.WriteHeader(http.StatusNoContent)
}

type SuggestionResponse struct {
	Move        string  `json:"move"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

func describeSuggestions(g *game.Game, suggestions []search.Suggestion) ([]SuggestionResponse, error) {
	resp := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		description, err := g.DescribeMove(s.Move)
		if err != nil {
			return nil, err
		}
		resp = append(resp, SuggestionResponse{
			Move:        s.Move.String(),
			Score:       s.Score,
			Description: description,
		})
	}
	return resp, nil
}

// SuggestionsHandler returns the best n moves, one by default.
func (s *Service) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	n := 1
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid suggestion count", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	var resp []SuggestionResponse
	err := s.store.With(gameID, func(g *game.Game) error {
		var err error
		resp, err = describeSuggestions(g, g.SuggestMoves(n))
		return err
	})
	if err != nil {
		writeError(w, gameID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": resp,
	})
}

func (s *Service) ListMovesHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var resp []SuggestionResponse
	err := s.store.With(gameID, func(g *game.Game) error {
		var err error
		resp, err = describeSuggestions(g, g.AllMoves())
		return err
	})
	if err != nil {
		writeError(w, gameID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"moves": resp,
		"count": len(resp),
	})
}

type MakeMoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (s *Service) MakeMoveHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req MakeMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	move, err := board.ParseMove(req.From + req.To)
	if err != nil {
		writeError(w, gameID, err)
		return
	}

	log.Info().Str("gameID", gameID).Str("from", req.From).Str("to", req.To).Msg("MakeMoveHandler called")

	var result *game.MoveResult
	err = s.store.With(gameID, func(g *game.Game) error {
		var err error
		result, err = g.MakeMove(move)
		return err
	})
	if err != nil {
		writeError(w, gameID, err)
		return
	}

	log.Info().
		Str("gameID", gameID).
		Str("move", result.Move).
		Str("fen", result.FEN).
		Bool("check", result.Check).
		Bool("checkmate", result.Checkmate).
		Float64("score", result.Score).
		Msg("Move executed successfully")

	if s.hub != nil {
		s.hub.BroadcastGameUpdate(GameUpdate{
			GameID: gameID,
			Type:   "move",
			Data:   result,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

type TreeResponse struct {
	Size   int   `json:"size"`
	Depth  int   `json:"depth"`
	Levels []int `json:"levels"`
}

func (s *Service) TreeHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var resp TreeResponse
	err := s.store.With(gameID, func(g *game.Game) error {
		resp = TreeResponse{
			Size:   g.TreeSize(),
			Depth:  g.Engine().Depth(),
			Levels: g.LevelCounts(),
		}
		return nil
	})
	if err != nil {
		writeError(w, gameID, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
