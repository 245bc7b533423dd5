// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/conftrack/conftrack/internal/log"
)

// refreshTimeout caps a refresh triggered over HTTP. The cron scheduler uses
// its own budget.
const refreshTimeout = 5 * time.Minute

// handleRefresh triggers a refresh and waits for it. Concurrent triggers
// coalesce onto the run already in flight, so every caller gets the same
// status back instead of a conflict error.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	// Run on an independent context so a client disconnect does not cancel
	// a half-written dataset.
	jobCtx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	clientGone := make(chan struct{})
	go func() {
		select {
		case <-r.Context().Done():
			if r.Context().Err() == context.Canceled {
				logger.Info().Str("event", "refresh.client_gone").Msg("client disconnected during refresh (job continues)")
				close(clientGone)
			}
		case <-jobCtx.Done():
		}
	}()

	start := time.Now()
	st, err := s.runner.Refresh(jobCtx)
	duration := time.Since(start)

	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "refresh.failed").
			Int64("duration_ms", duration.Milliseconds()).
			Msg("refresh failed")
		// Internal details stay in the log.
		RespondError(w, r, http.StatusInternalServerError, ErrRefreshFailed)
		return
	}

	select {
	case <-clientGone:
		logger.Info().
			Str("event", "refresh.success").
			Int("total", st.Total).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("refresh completed despite client disconnect")
	default:
		logger.Info().
			Str("event", "refresh.success").
			Int("total", st.Total).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("refresh completed")
	}

	writeJSON(w, http.StatusOK, st)
}
