package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/AnshRaj112/luna-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type PersonaListResponse struct {
	Personas        []*models.Persona `json:"personas"`
	ActivePersonaID string            `json:"activePersonaId"`
}

type SetActivePersonaRequest struct {
	ID string `json:"id"`
}

type PersonaChatRequest struct {
	Message string `json:"message"`
}

type PersonaChatResponse struct {
	Response       string                `json:"response"`
	Intent         string                `json:"intent"`
	EmotionalState models.EmotionalState `json:"emotionalState"`
	Persona        *models.Persona       `json:"persona"`
}

type ResetPersonasResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Luna    *models.Persona `json:"luna"`
}

func ListPersonas(w http.ResponseWriter, r *http.Request) {
	personas, activeID := personaRegistry.List()
	writeJSON(w, http.StatusOK, PersonaListResponse{Personas: personas, ActivePersonaID: activeID})
}

func GetPersona(w http.ResponseWriter, r *http.Request) {
	p, err := personaRegistry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "failed to load persona")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePersona registers a custom persona. Every score must lie in 0..1.
func CreatePersona(w http.ResponseWriter, r *http.Request) {
	var in services.PersonaInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := personaRegistry.Create(in)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputValidationFailed, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func SetActivePersona(w http.ResponseWriter, r *http.Request) {
	var req SetActivePersonaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, "id is required")
		return
	}
	if err := personaRegistry.SetActive(req.ID); err != nil {
		writeError(w, err, "failed to activate persona")
		return
	}
	writeJSON(w, http.StatusOK, personaRegistry.Active())
}

// PersonaChat runs one conversational turn; the persona's mood carries over
// to the next turn.
func PersonaChat(w http.ResponseWriter, r *http.Request) {
	var req PersonaChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, "message is required")
		return
	}

	reply, err := personaRegistry.Chat(chi.URLParam(r, "id"), req.Message)
	if err != nil {
		writeError(w, err, "failed to generate persona reply")
		return
	}
	writeJSON(w, http.StatusOK, PersonaChatResponse{
		Response:       reply.Response,
		Intent:         reply.Intent,
		EmotionalState: reply.EmotionalState,
		Persona:        reply.Persona,
	})
}

// DeletePersona removes a custom persona. Luna is locked.
func DeletePersona(w http.ResponseWriter, r *http.Request) {
	if err := personaRegistry.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "failed to delete persona")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ResetPersonas drops every custom persona and restores Luna (admin only).
func ResetPersonas(w http.ResponseWriter, r *http.Request) {
	luna := personaRegistry.Reset()
	writeJSON(w, http.StatusOK, ResetPersonasResponse{
		Success: true,
		Message: "Persona system reset to Luna only",
		Luna:    luna,
	})
}
