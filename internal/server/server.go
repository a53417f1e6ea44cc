package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"escalator/internal/game"
	"escalator/internal/game/escalator"
	"escalator/internal/session"
	"escalator/internal/storage"
)

// Server is the HTTP server.
type Server struct {
	mux      *http.ServeMux
	registry *game.Registry
	manager  *session.Manager
	webFS    fs.FS
}

// New creates a server with all routes. webFS may be nil when no static
// front end is served.
func New(registry *game.Registry, manager *session.Manager, webFS fs.FS) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		registry: registry,
		manager:  manager,
		webFS:    webFS,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// API routes
	s.mux.HandleFunc("GET /api/games", s.handleListGames)
	s.mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/{code}", s.handleGetSession)
	s.mux.HandleFunc("GET /api/sessions/{code}/state", s.handleGetState)
	s.mux.HandleFunc("POST /api/sessions/{code}/moves", s.handleMove)
	s.mux.HandleFunc("GET /api/sessions/{code}/ws", s.handleWebSocket)
	s.mux.HandleFunc("GET /api/results", s.handleResults)

	// Static files
	if s.webFS != nil {
		s.mux.Handle("/", http.FileServer(http.FS(s.webFS)))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.List())
}

type createSessionRequest struct {
	GameType string `json:"gameType"`
	PlayerID string `json:"playerId"`
	Seed     int64  `json:"seed"`
}

type createSessionResponse struct {
	Code string       `json:"code"`
	View session.View `json:"view"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.GameType = strings.TrimSpace(req.GameType)
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if req.GameType == "" {
		req.GameType = escalator.Name
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId required")
		return
	}

	sess, err := s.manager.Create(req.GameType, req.PlayerID, req.Seed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{Code: sess.Code, View: sess.View(req.PlayerID)})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	player := r.URL.Query().Get("player")
	if player == "" {
		player = sess.Info().PlayerID
	}
	writeJSON(w, http.StatusOK, sess.View(player))
}

type moveRequest struct {
	PlayerID    string `json:"playerId"`
	Destination *int   `json:"destination"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Destination == nil {
		writeError(w, http.StatusBadRequest, "destination required")
		return
	}
	sess, err := s.manager.Apply(code, req.PlayerID, escalator.MoveAction(*req.Destination))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.broadcastState(sess)
	writeJSON(w, http.StatusOK, sess.View(req.PlayerID))
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	results, err := s.manager.TopResults(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []storage.ResultRow{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := s.manager.Get(r.PathValue("code"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
	}
	return sess, ok
}

// statusFor maps game and session errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, game.ErrNotYourTurn):
		return http.StatusForbidden
	case errors.Is(err, game.ErrBadAction):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
