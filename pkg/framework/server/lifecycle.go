package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func (s *Server) Start(ctx context.Context) error {
	if s.config.LogCleanupInterval > 0 {
		go s.startLogCleanup(ctx)
	}

	go func() {
		s.logger.Info("Starting HTTP server", "port", s.config.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(err, "HTTP server error")
		}
	}()

	return nil
}

func (s *Server) WaitForShutdown(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		s.logger.Info("Shutting down...")
	case <-ctx.Done():
		s.logger.Info("Shutting down due to context cancellation...")
	}
	return s.Shutdown(context.Background())
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, DefaultShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("Shutdown complete")
	return nil
}

func (s *Server) startLogCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.config.LogCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.cleanupEvents(now)
		}
	}
}

func (s *Server) cleanupEvents(now time.Time) int {
	before := now.AddDate(0, 0, -s.config.LogRetentionDays)
	deleted, err := s.eventStore.CleanupOldEvents(before)
	if err != nil {
		s.logger.Error(err, "failed to cleanup old events")
		return 0
	}
	if deleted > 0 {
		s.logger.V(1).Info("cleaned up old events", "deleted", deleted, "before", before)
	}
	return deleted
}
