package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/database"
	"github.com/AnshRaj112/luna-backend/internal/services"
)

type AIStatusResponse struct {
	Systems       interface{} `json:"systems"`
	OverallStatus string      `json:"overallStatus"`
	LastChecked   string      `json:"lastChecked"`
}

type StatusResponse struct {
	Status      string            `json:"status"`
	Services    map[string]bool   `json:"services"`
	Backends    map[string]string `json:"backends"`
	Environment string            `json:"environment"`
	Message     string            `json:"message"`
}

type CheckEnvResponse struct {
	IsConfigured     bool     `json:"isConfigured"`
	MissingVariables []string `json:"missingVariables"`
	Environment      string   `json:"environment"`
	Message          string   `json:"message"`
}

type CheckModelsResponse struct {
	Models          map[string]bool `json:"models"`
	AvailableModels []string        `json:"availableModels"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func AIStatus(w http.ResponseWriter, r *http.Request) {
	systems := services.AISystems()
	writeJSON(w, http.StatusOK, AIStatusResponse{
		Systems:       systems,
		OverallStatus: services.OverallStatus(systems),
		LastChecked:   now(),
	})
}

func AIHub(w http.ResponseWriter, r *http.Request) {
	capabilities := services.AICapabilities()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"capabilities": capabilities,
		"totalCount":   len(capabilities),
		"lastUpdated":  now(),
	})
}

// Status reports which backends this instance is actually wired to.
func Status(w http.ResponseWriter, r *http.Request) {
	storeDriver := "memory"
	if appConfig != nil && appConfig.StoreDriver != "" {
		storeDriver = appConfig.StoreDriver
	}
	transcripts := "disabled"
	if database.DB != nil {
		transcripts = "mongodb"
	}

	msg := "모든 서비스가 정상적으로 작동 중입니다."
	if !searchService.Configured() {
		msg = "검색 API가 구성되지 않아 모의 검색 결과를 사용합니다."
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Status: "online",
		Services: map[string]bool{
			"search":   searchService.Configured(),
			"database": responseStore != nil,
			"ai":       true,
			"uploads":  cloudinaryService != nil,
		},
		Backends: map[string]string{
			"store":       storeDriver,
			"cache":       cacheService.Backend(),
			"transcripts": transcripts,
		},
		Environment: environment(),
		Message:     msg,
	})
}

// CheckEnv lists the search variables that still need to be set.
func CheckEnv(w http.ResponseWriter, r *http.Request) {
	missing := []string{}
	if appConfig != nil {
		missing = appConfig.MissingSearchVariables()
	}
	msg := "필요한 환경 변수가 모두 설정되었습니다."
	if len(missing) > 0 {
		msg = "일부 환경 변수가 설정되지 않았습니다. 모의 검색 결과를 사용합니다."
	}
	writeJSON(w, http.StatusOK, CheckEnvResponse{
		IsConfigured:     len(missing) == 0,
		MissingVariables: missing,
		Environment:      environment(),
		Message:          msg,
	})
}

// CheckModels reports which GPT-2 checkpoints exist under MODELS_DIR.
func CheckModels(w http.ResponseWriter, r *http.Request) {
	dir := "models"
	if appConfig != nil {
		dir = appConfig.ModelsDir
	}
	resp := CheckModelsResponse{Models: map[string]bool{}, AvailableModels: []string{}}
	for _, m := range services.CheckLocalModels(dir) {
		resp.Models[m.ID] = m.Available
		if m.Available {
			resp.AvailableModels = append(resp.AvailableModels, m.ID)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// DownloadModel acknowledges a download request. Nothing is fetched.
func DownloadModel(w http.ResponseWriter, r *http.Request) {
	model := r.URL.Query().Get("model")
	if model == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Model parameter is required"})
		return
	}
	if !services.IsKnownLocalModel(model) {
		log.Printf("⚠️ Download requested for unknown model %q", model)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Started download for model: " + model,
		"model":   model,
	})
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func environment() string {
	if appConfig == nil || appConfig.Environment == "" {
		return "development"
	}
	return appConfig.Environment
}
