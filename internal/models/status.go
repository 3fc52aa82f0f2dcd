package models

type AISystem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	Uptime      float64 `json:"uptime"`
	LastUpdated string  `json:"lastUpdated"`
}

type AICapability struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Category    string `json:"category"`
}

// LocalModel is a model that can be served from MODELS_DIR.
type LocalModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Size        string `json:"size"`
	Available   bool   `json:"available"`
}
