package routes

import (
	"time"

	"github.com/AnshRaj112/luna-backend/internal/config"
	"github.com/AnshRaj112/luna-backend/internal/handlers"
	"github.com/AnshRaj112/luna-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r chi.Router, cfg *config.Config) {
	r.Get("/health", handlers.Health)

	// Status and catalog
	r.Get("/api/status", handlers.Status)
	r.Get("/api/ai-status", handlers.AIStatus)
	r.Get("/api/ai-hub", handlers.AIHub)
	r.Get("/api/check-env", handlers.CheckEnv)
	r.Get("/api/check-models", handlers.CheckModels)
	r.Get("/api/download-model", handlers.DownloadModel)

	// Q&A record store
	r.Get("/api/database", handlers.ListResponses)
	r.Post("/api/database", handlers.CreateResponse)
	r.Put("/api/database", handlers.UpdateResponse)
	r.Delete("/api/database", handlers.DeleteResponse)
	r.Get("/api/database/stats", handlers.GetResponseStats)
	r.Get("/api/database/{id}", handlers.GetResponse)
	r.Post("/api/database/{id}/feedback", handlers.SubmitResponseFeedback)
	r.Post("/api/save-response", handlers.SaveResponse)

	// Search (Google quota is shared, so limit per client across instances)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RedisRateLimit("search", 30, time.Minute))
		r.Get("/api/search", handlers.Search)
		r.Post("/api/oracle-search", handlers.OracleSearch)
	})
	r.Get("/api/search/debug", handlers.SearchDebug)

	// Chat
	r.Group(func(r chi.Router) {
		r.Use(middleware.RedisRateLimit("chat", 60, time.Minute))
		r.Post("/api/chat", handlers.Chat)
		r.Post("/api/chat-with-search", handlers.ChatWithSearch)
	})
	r.With(middleware.ChatHistoryRateLimit).Get("/api/chat/history", handlers.LoadChatHistory)
	r.Get("/ws/chat", handlers.ChatWebSocket)

	// Sessions
	r.Post("/api/sessions", handlers.StartSession)
	r.Get("/api/sessions/stats", handlers.GetSessionStats)
	r.Put("/api/sessions/{id}", handlers.TouchSession)
	r.Delete("/api/sessions/{id}", handlers.EndSession)

	// Personas
	r.Get("/api/personas", handlers.ListPersonas)
	r.Post("/api/personas", handlers.CreatePersona)
	r.Put("/api/personas/active", handlers.SetActivePersona)
	r.Get("/api/personas/{id}", handlers.GetPersona)
	r.Delete("/api/personas/{id}", handlers.DeletePersona)
	r.Post("/api/personas/{id}/chat", handlers.PersonaChat)
	r.Post("/api/reset-personas", handlers.ResetPersonas)

	// Neural networks
	r.Post("/api/neural-network/train", handlers.TrainNetwork)
	r.Get("/api/neural-network/{id}", handlers.GetNetwork)
	r.Post("/api/neural-network/{id}/predict", handlers.PredictNetwork)

	// Text utilities
	r.Post("/api/summarize", handlers.Summarize)
	r.Post("/api/translate", handlers.Translate)
	r.Get("/api/translate/languages", handlers.ListLanguages)
	r.Post("/api/detect-language", handlers.DetectLanguage)
	r.Post("/api/tts", handlers.TextToSpeech)
	r.Post("/api/stt", handlers.SpeechToText)
	r.Post("/api/thought-process", handlers.ThoughtProcess)

	// File upload routes
	r.Post("/api/upload", handlers.UploadFile)

	// Admin routes
	r.With(middleware.LoginRateLimit).Post("/api/admin/login", handlers.AdminLogin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(cfg.AdminKeyHash, handlers.AdminSessions()))
		r.Post("/api/admin/logout", handlers.AdminLogout)
		r.Delete("/api/admin/database", handlers.ResetDatabase)
		r.Delete("/api/admin/cache", handlers.FlushCache)
		r.Get("/api/admin/feedbacks", handlers.GetFeedbacks)
	})
}
