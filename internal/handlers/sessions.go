package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// StartSession opens a new visitor session.
func StartSession(w http.ResponseWriter, r *http.Request) {
	us, err := sessionService.Start(r.Context())
	if err != nil {
		writeError(w, err, "failed to start session")
		return
	}
	writeJSON(w, http.StatusCreated, us)
}

// TouchSession records one interaction on the session.
func TouchSession(w http.ResponseWriter, r *http.Request) {
	us, err := sessionService.Touch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "failed to update session")
		return
	}
	writeJSON(w, http.StatusOK, us)
}

func EndSession(w http.ResponseWriter, r *http.Request) {
	us, err := sessionService.End(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "failed to end session")
		return
	}
	writeJSON(w, http.StatusOK, us)
}

func GetSessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := sessionService.Stats(r.Context())
	if err != nil {
		writeError(w, err, "failed to compute session stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
