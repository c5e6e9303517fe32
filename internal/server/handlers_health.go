package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jonathan/hr-pulse/internal/types"
	"go.uber.org/zap"
)

const readyPingTimeout = 2 * time.Second

// handleReady reports whether a model is loaded, plus the database state when
// one is configured. Readiness depends on the model only.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	database := s.databaseStatus(r.Context())

	if s.predictor == nil {
		msg := "model not loaded"
		if s.modelErr != nil {
			msg = s.modelErr.Error()
		}
		s.jsonResponse(w, http.StatusServiceUnavailable, types.ReadyResponse{
			Status:   "unavailable",
			Database: database,
			Error:    msg,
		})
		return
	}
	info := s.predictor.Info()
	s.jsonResponse(w, http.StatusOK, types.ReadyResponse{
		Status:      "ready",
		Fingerprint: info.Fingerprint,
		TrainedAt:   info.TrainedAt,
		Database:    database,
	})
}

// databaseStatus is "ok" or "unavailable", or "" when the job store cannot be pinged.
func (s *Server) databaseStatus(ctx context.Context) string {
	pinger, ok := s.jobs.(Pinger)
	if !ok {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, readyPingTimeout)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		s.log.Warn("database ping failed", zap.Error(err))
		return types.DatabaseUnavailable
	}
	return types.DatabaseOK
}
