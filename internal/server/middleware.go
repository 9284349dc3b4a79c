package server

import (
	"net/http"
	"strconv"
	"time"
)

// statusRecorder remembers the status a handler wrote so the instrumented
// route can label its request counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// route wraps an API handler with the browser surface's CORS policy and
// request metrics. Preflight requests are answered here and never reach h.
func (s *Server) route(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", s.corsOrigin)
		hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type")
		hdr.Set("Access-Control-Max-Age", "86400")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		began := time.Now()
		h(rec, req)

		httpRequestDuration.WithLabelValues(req.Method, name).Observe(time.Since(began).Seconds())
		httpRequestsTotal.WithLabelValues(req.Method, name, strconv.Itoa(rec.status)).Inc()
	}
}
