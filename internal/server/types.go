package server

import (
	"net/http"
	"sync"

	"github.com/MeKo-Tech/seglabel/internal/workspace"
)

// Server exposes one workspace to a browser surface. Every workspace call
// runs under mu, which makes the workspace the single event thread.
type Server struct {
	mu         sync.Mutex
	ws         *workspace.Workspace
	corsOrigin string
	version    string
}

// Config holds server configuration.
type Config struct {
	CORSOrigin string
	Version    string
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ErrorResponse is the JSON body of failed HTTP requests.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorType string `json:"error_type,omitempty"`
}

// ClientMessage is one inbound message from the surface, over the websocket
// or POST /api/event. Type is a pointer event name ("pointer_down",
// "pointer_move", "pointer_up", "secondary", "double"), "modifier",
// "resize", "key" or "command"; the remaining fields are read per type.
type ClientMessage struct {
	Type    string  `json:"type"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Held    bool    `json:"held,omitempty"`
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`
	Key     string  `json:"key,omitempty"`
	Command string  `json:"command,omitempty"`
	Index   int     `json:"index,omitempty"`
	Name    string  `json:"name,omitempty"`
	Up      bool    `json:"up,omitempty"`
	Path    string  `json:"path,omitempty"`
	Mode    string  `json:"mode,omitempty"`
}

// Outbound message types.
const (
	MessageScene = "scene"
	MessageError = "error"
)

// Error categories reported in ServerMessage.ErrorType.
const (
	ErrorPrecondition   = "precondition"
	ErrorInvalidRequest = "invalid_request"
	ErrorOperation      = "operation_failed"
)

// ServerMessage is one outbound message: a fresh scene, or an error with the
// unchanged state.
type ServerMessage struct {
	Type      string           `json:"type"`
	State     *workspace.State `json:"state,omitempty"`
	Notice    string           `json:"notice,omitempty"`
	Created   int              `json:"created,omitempty"` // polygons added by auto-annotation
	Error     string           `json:"error,omitempty"`
	ErrorType string           `json:"error_type,omitempty"`
}

// NewServer wraps ws.
func NewServer(ws *workspace.Workspace, config Config) *Server {
	origin := config.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return &Server{ws: ws, corsOrigin: origin, version: config.Version}
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.route("health", s.healthHandler))
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/api/state", s.route("state", s.stateHandler))
	mux.HandleFunc("/api/image", s.route("image", s.imageHandler))
	mux.HandleFunc("/api/overlay.png", s.route("overlay", s.overlayHandler))
	mux.HandleFunc("/api/event", s.route("event", s.eventHandler))
	mux.HandleFunc("/ws", s.websocketHandler)
}

// Handler returns a mux with every route installed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

// Close commits a pending polygon of three or more points and saves the
// current image. It is called once on shutdown.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.Flush()
}
