package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/tobiasgrant/tasksync/internal/config"
	"github.com/tobiasgrant/tasksync/internal/events"
	"github.com/tobiasgrant/tasksync/internal/store"
)

// Server is the reference task API: JSON CRUD over a Store plus a WebSocket
// snapshot stream that fires after every successful mutation.
type Server struct {
	cfg      *config.ServerConfig
	store    store.Store
	hub      *Hub
	validate *validator.Validate
	upgrader websocket.Upgrader
	logger   *events.Logger

	httpServer *http.Server
}

// New creates a server over the given store.
func New(cfg *config.ServerConfig, st store.Store, logger *events.Logger) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		hub:      NewHub(logger),
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Single-origin reference deployment; the stream is read-only.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.WithField("component", "server"),
	}
}

// Router builds the chi route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/ws", s.handleStream)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Patch("/", s.handleUpdate)
			r.Delete("/", s.handleDelete)
		})
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.cfg.Addr).Info("Server listening")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.hub.Close()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
