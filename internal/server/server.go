package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"picpurge/internal/handlers"
	"picpurge/internal/logging"
	"picpurge/internal/middleware"
)

// Server is the HTTP front end over a finished (or running) scan's
// results.
type Server struct {
	srv *http.Server
}

// New builds the router and wraps it with the middleware chain.
func New(h *handlers.Handlers, port string) *Server {
	handler := Router(h)

	return &Server{
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Router assembles the route table and middleware. Exposed separately
// so tests can drive the full stack through httptest.
func Router(h *handlers.Handlers) http.Handler {
	r := mux.NewRouter()

	// Subrouters do not inherit the parent's method-mismatch handler,
	// and without one a wrong-method request inside /api surfaces as a
	// 404 instead of a 405.
	notAllowed := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	r.MethodNotAllowedHandler = notAllowed

	api := r.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = notAllowed
	api.HandleFunc("/stats", h.Stats).Methods("GET")
	api.HandleFunc("/images", h.Images).Methods("GET")
	api.HandleFunc("/image/{id:[0-9]+}", h.ImageFile).Methods("GET")
	api.HandleFunc("/recycle", h.Recycle).Methods("POST")

	r.HandleFunc("/thumbnails/{hash}", h.Thumbnail).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return middleware.Logger()(middleware.Metrics()(middleware.Compress()(r)))
}

// ListenAndServe runs until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	logging.Info("API server listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
