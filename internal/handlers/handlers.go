package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/config"
	"github.com/AnshRaj112/luna-backend/internal/services"
	"github.com/AnshRaj112/luna-backend/pkg/utils"
)

// Services shared by the handlers. InitServices sets them once at startup.
var (
	appConfig       *config.Config
	responseStore   services.ResponseStore
	cacheService    *services.CacheService
	searchService   *services.SearchService
	chatService     *services.ChatService
	sessionService  *services.SessionService
	personaRegistry *services.PersonaRegistry
	networkRegistry *services.NetworkRegistry
	summarizer      *services.Summarizer
	translator      *services.Translator
	assistant       *services.Assistant
	adminSessions   *services.AdminSessions
)

// InitServices builds every service from cfg around the chosen response store.
func InitServices(cfg *config.Config, store services.ResponseStore) {
	appConfig = cfg
	responseStore = store
	cacheService = services.NewCacheService()
	searchService = services.NewSearchService(cfg, cacheService)
	sessionService = services.NewSessionService()
	personaRegistry = services.NewPersonaRegistry(0)
	networkRegistry = services.NewNetworkRegistry()
	summarizer = services.NewSummarizer(cacheService)
	translator = services.NewTranslator(cacheService, cfg.MockSearchDelay)
	assistant = services.NewAssistant(0)
	adminSessions = services.NewAdminSessions()

	generator := services.NewOpenAIGenerator(cfg)
	if generator != nil {
		log.Printf("✅ OpenAI generator enabled (model %s)", cfg.OpenAIModel)
	}
	chatService = services.NewChatService(store, searchService, assistant, generator, sessionService, cfg.ResponseDelay)
}

// AdminSessions is the token store the admin guard validates against.
func AdminSessions() *services.AdminSessions {
	return adminSessions
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ Failed to write response: %v", err)
	}
}

// writeError renders err as {"error", "code"}. Store sentinels map to 404 and
// 400; anything unclassified is logged and reported as fallbackMsg with 500.
func writeError(w http.ResponseWriter, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrPersonaNotFound),
		errors.Is(err, services.ErrNetworkNotFound),
		errors.Is(err, services.ErrSessionNotFound):
		writeErrorMessage(w, http.StatusNotFound, apperr.DatabaseRecordNotFound, err.Error())
		return
	case errors.Is(err, services.ErrMissingFields):
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, err.Error())
		return
	case errors.Is(err, services.ErrDefaultPersonaLocked):
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputInvalid, err.Error())
		return
	}

	var validationErr *utils.ValidationError
	if errors.As(err, &validationErr) {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputValidationFailed, validationErr.Message)
		return
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status := apperr.StatusForCode(appErr.Code)
		msg := appErr.Message
		if status == http.StatusInternalServerError {
			log.Printf("⚠️ %v", err)
			if fallbackMsg != "" {
				msg = fallbackMsg
			}
		}
		writeErrorMessage(w, status, appErr.Code, msg)
		return
	}

	log.Printf("⚠️ %s: %v", fallbackMsg, err)
	writeErrorMessage(w, http.StatusInternalServerError, apperr.SystemError, fallbackMsg)
}

func writeErrorMessage(w http.ResponseWriter, status int, code apperr.Code, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": msg,
		"code":  code,
	})
}

// decodeJSON reads a JSON body, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputInvalid, "Invalid request body")
		return false
	}
	return true
}
