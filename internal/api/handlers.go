// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"os"

	"github.com/conftrack/conftrack/internal/catalog"
	"github.com/conftrack/conftrack/internal/log"
)

// handleHealthz reports liveness: the process is up and serving.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.cfg.Version,
	})
}

// handleReadyz reports readiness: a dataset has been published, either by a
// completed refresh in this process or by a previous run on disk.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if last := s.runner.Last(); last != nil && last.Error == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	if _, err := os.Stat(s.runner.DatasetPath()); err == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	RespondError(w, r, http.StatusServiceUnavailable, ErrNotReady)
}

// handleStatus serves the outcome of the most recent refresh.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	last := s.runner.Last()
	if last == nil {
		RespondError(w, r, http.StatusNotFound, ErrStatusUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, last)
}

// handleTracks serves the track vocabulary the curation pipeline accepts.
// The file is re-read per request so edits show up without a restart.
func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	vocab, err := catalog.LoadVocabulary(s.cfg.TracksFile)
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str("event", "tracks.load_failed").
			Str("path", s.cfg.TracksFile).
			Msg("could not load track vocabulary")
		RespondError(w, r, http.StatusInternalServerError, ErrInternal)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tracks": vocab.Labels()})
}
