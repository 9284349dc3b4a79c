package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/seglabel/internal/render"
	"github.com/MeKo-Tech/seglabel/internal/utils"
)

// maxEventBytes bounds POST /api/event bodies.
const maxEventBytes = 64 << 10

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// stateHandler returns the workspace snapshot.
func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.snapshot())
}

// imageHandler streams the current image file.
func (s *Server) imageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	path, _, _ := s.ws.Current()
	s.mu.Unlock()
	if path == "" {
		s.writeErrorResponse(w, "no image loaded", ErrorPrecondition, http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, path)
}

// overlayHandler renders the current annotations over the image as PNG.
// The optional max query parameter bounds the longer side.
func (s *Server) overlayHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	opts := render.DefaultOptions()
	if v := r.URL.Query().Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeErrorResponse(w, "max must be a non-negative integer", ErrorInvalidRequest, http.StatusBadRequest)
			return
		}
		opts.MaxSide = n
	}

	s.mu.Lock()
	path, _, _ := s.ws.Current()
	anns := s.ws.Annotations()
	classes := s.ws.Classes()
	opts.Selected = s.ws.Session().Selected
	s.mu.Unlock()

	if path == "" {
		s.writeErrorResponse(w, "no image loaded", ErrorPrecondition, http.StatusNotFound)
		return
	}
	img, _, err := utils.LoadImage(path)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), ErrorOperation, http.StatusInternalServerError)
		return
	}
	ov := render.Overlay(img, anns, classes, opts)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.EncodePNG(w, ov); err != nil {
		slog.Error("Failed to encode overlay", "error", err)
	}
}

// eventHandler applies one ClientMessage posted as JSON and answers with
// the resulting ServerMessage.
func (s *Server) eventHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBytes)
	var msg ClientMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, "request too large", ErrorInvalidRequest, http.StatusRequestEntityTooLarge)
			return
		}
		s.writeErrorResponse(w, "failed to parse request: "+err.Error(), ErrorInvalidRequest, http.StatusBadRequest)
		return
	}

	reply, _ := s.process(r.Context(), msg)
	status := http.StatusOK
	switch reply.ErrorType {
	case ErrorInvalidRequest:
		status = http.StatusBadRequest
	case ErrorPrecondition:
		status = http.StatusConflict
	case ErrorOperation:
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, reply)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message, errorType string, statusCode int) {
	s.writeJSON(w, statusCode, ErrorResponse{Success: false, Error: message, ErrorType: errorType})
}
