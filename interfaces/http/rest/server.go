package rest

import (
	"context"
	"errors"
	"net/http"

	"slidecanvas/infrastructure/di"

	"go.uber.org/zap"
)

// Server runs the router on the configured address until its context ends
type Server struct {
	container *di.Container
	srv       *http.Server
}

// NewServer creates an HTTP server for the container's services
func NewServer(container *di.Container) *Server {
	cfg := container.Config.Server
	return &Server{
		container: container,
		srv: &http.Server{
			Addr:         cfg.Address,
			Handler:      NewRouter(container).Setup(),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  2 * cfg.ReadTimeout,
		},
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	logger := s.container.Logger
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("address", s.srv.Addr),
			zap.String("environment", string(s.container.Config.Environment)),
			zap.String("storage", s.container.Config.Storage.Driver),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.container.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
