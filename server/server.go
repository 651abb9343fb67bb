package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"shorts-agent/agent"
)

// Authenticator is the credential surface the /auth and /status routes
// need from the publisher.
type Authenticator interface {
	IsAuthenticated() bool
	Authenticate(ctx context.Context) error
}

// Server exposes the control surface: start/stop/status over plain
// HTTP and a websocket push channel for live events.
type Server struct {
	agent    *agent.Agent
	auth     Authenticator
	upgrader websocket.Upgrader
}

func New(a *agent.Agent, auth Authenticator) *Server {
	return &Server{
		agent: a,
		auth:  auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(cors)
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/stop", s.handleStop).Methods(http.MethodPost)
	r.HandleFunc("/auth", s.handleAuth).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.handleWS)
	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Online", "agent": "shorts-agent"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.agent.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"is_running":       st.IsRunning,
		"current_action":   st.CurrentAction,
		"is_authenticated": s.auth.IsAuthenticated(),
	})
}

func (s *Server) handleStart(w http.ResponseWriter, _ *http.Request) {
	if err := s.agent.Start(); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Already running"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Started"})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.agent.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Stopping..."})
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Authenticate(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"message": err.Error(), "success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Authenticated successfully", "success": true})
}

// handleWS upgrades the connection and streams status events until the
// client goes away. Inbound payloads carry no meaning; the read loop
// only detects disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[server] websocket upgrade failed: %v", err)
		return
	}

	events, cancel := s.agent.Subscribe()

	go func() {
		defer cancel()
		defer conn.Close()
		for ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	cancel()
	conn.Close()
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
