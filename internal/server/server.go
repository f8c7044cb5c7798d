package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"tramboard/internal/config"
	"tramboard/internal/directory"
	"tramboard/internal/handler"
	"tramboard/internal/messages"
	"tramboard/internal/notify"
	"tramboard/internal/query"
	"tramboard/web"
)

// shutdownTimeout bounds how long in-flight requests get on shutdown.
const shutdownTimeout = 10 * time.Second

// Server is the HTTP server for the departure board.
type Server struct {
	router *mux.Router
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a new Server with all routes registered.
func New(cfg *config.Config, orch *query.Orchestrator, dir *directory.Directory, broker *notify.Broker, msgs *messages.Printer, logger *slog.Logger) *Server {
	r := mux.NewRouter()

	// Static files from the embedded FS; versioned URLs get immutable caching
	staticFS, _ := fs.Sub(web.StaticFiles, "static")
	h := handler.New(orch, dir, broker, msgs, staticFS, logger)

	fileServer := http.FileServer(http.FS(staticFS))
	r.PathPrefix("/static/").Methods("GET").Handler(http.StripPrefix("/static/", staticCacheHandler(fileServer)))

	// Pages
	r.HandleFunc("/", h.Board).Methods("GET")
	r.HandleFunc("/manifest.json", h.Manifest).Methods("GET")
	r.HandleFunc("/favorites/toggle", h.ToggleFavorite).Methods("POST")
	r.HandleFunc("/favorites/remove", h.RemoveFavorite).Methods("POST")
	r.HandleFunc("/recent/clear", h.ClearRecent).Methods("POST")

	// JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/departures", h.APIDepartures).Methods("GET")
	api.HandleFunc("/stops", h.APIStops).Methods("GET")
	api.HandleFunc("/recent", h.APIRecent).Methods("GET")
	api.HandleFunc("/recent", h.APIClearRecent).Methods("DELETE")
	api.HandleFunc("/favorites", h.APIFavorites).Methods("GET")
	api.HandleFunc("/favorites/toggle", h.APIToggleFavorite).Methods("POST")
	api.HandleFunc("/favorites/remove", h.APIRemoveFavorite).Methods("POST")

	// SSE
	r.HandleFunc("/events", h.Events).Methods("GET")

	return &Server{router: r, cfg: cfg, logger: logger}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return withMiddleware(s.router, s.logger)
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
