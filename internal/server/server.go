package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

// NewRouter routes webhook deliveries and health checks.
func NewRouter(webhookPath string, webhook http.Handler) *mux.Router {
	router := mux.NewRouter()
	router.Handle(webhookPath, webhook).Methods(http.MethodPost)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(slog.Default(), w, http.StatusOK, "ok")
	}).Methods(http.MethodGet)
	return router
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func New(addr string, webhookPath string, sweeper Sweeper, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(webhookPath, NewWebhookHandler(sweeper, logger)),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Webhook server listening", "addr", s.httpServer.Addr)
		errChan <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("webhook server: %w", err)
	case <-ctx.Done():
		s.logger.Info("Context done, stopping webhook server.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown webhook server: %w", err)
	}
	return nil
}
