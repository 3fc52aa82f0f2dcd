package services

import (
	"os"
	"path/filepath"

	"github.com/AnshRaj112/luna-backend/internal/models"
)

// Files a downloaded checkpoint must contain to count as available.
var localModelFiles = []string{"config.json", "pytorch_model.bin"}

var localModels = []models.LocalModel{
	{ID: "gpt2", Name: "GPT-2 Small", Description: "124M parameter GPT-2", Size: "548MB"},
	{ID: "gpt2-medium", Name: "GPT-2 Medium", Description: "355M parameter GPT-2", Size: "1.52GB"},
	{ID: "gpt2-large", Name: "GPT-2 Large", Description: "774M parameter GPT-2", Size: "3.25GB"},
	{ID: "gpt2-xl", Name: "GPT-2 XL", Description: "1.5B parameter GPT-2", Size: "6.43GB"},
}

// AISystems is the fixed status board shown on the AI status page.
func AISystems() []models.AISystem {
	return []models.AISystem{
		{ID: "neural-networks", Name: "Neural Networks", Status: "operational", Uptime: 99.8, LastUpdated: "2023-05-17T14:23:10Z"},
		{ID: "natural-language", Name: "Natural Language Understanding", Status: "operational", Uptime: 99.9, LastUpdated: "2023-05-17T16:45:22Z"},
		{ID: "image-generation", Name: "Image Generation", Status: "operational", Uptime: 99.7, LastUpdated: "2023-05-17T12:10:05Z"},
		{ID: "conversational", Name: "Conversational AI", Status: "operational", Uptime: 99.9, LastUpdated: "2023-05-17T17:30:15Z"},
		{ID: "reinforcement", Name: "Reinforcement Learning", Status: "degraded", Uptime: 95.2, LastUpdated: "2023-05-15T09:12:33Z"},
		{ID: "emotion", Name: "Emotion Detection", Status: "operational", Uptime: 98.5, LastUpdated: "2023-05-16T22:45:10Z"},
		{ID: "knowledge", Name: "Knowledge Graph", Status: "operational", Uptime: 99.6, LastUpdated: "2023-05-17T11:20:45Z"},
		{ID: "memory", Name: "Memory System", Status: "operational", Uptime: 99.9, LastUpdated: "2023-05-17T18:05:30Z"},
		{ID: "speech", Name: "Speech Recognition", Status: "operational", Uptime: 99.3, LastUpdated: "2023-05-17T15:40:12Z"},
		{ID: "text-to-speech", Name: "Text to Speech", Status: "operational", Uptime: 99.5, LastUpdated: "2023-05-17T14:55:20Z"},
		{ID: "translation", Name: "Translation", Status: "operational", Uptime: 99.7, LastUpdated: "2023-05-17T13:15:40Z"},
		{ID: "summarization", Name: "Text Summarization", Status: "operational", Uptime: 99.4, LastUpdated: "2023-05-17T12:30:15Z"},
		{ID: "code-generation", Name: "Code Generation", Status: "operational", Uptime: 98.9, LastUpdated: "2023-05-17T10:45:30Z"},
	}
}

// OverallStatus is "operational" unless a system is down.
func OverallStatus(systems []models.AISystem) string {
	for _, s := range systems {
		if s.Status == "down" {
			return "outage"
		}
	}
	return "operational"
}

func AICapabilities() []models.AICapability {
	return []models.AICapability{
		{ID: "speech-recognition", Name: "Speech Recognition", Description: "Convert spoken language into written text", Status: "available", Category: "voice"},
		{ID: "text-to-speech", Name: "Text to Speech", Description: "Convert written text into natural-sounding speech", Status: "available", Category: "voice"},
		{ID: "image-generation", Name: "Image Generation", Description: "Generate images from text descriptions", Status: "available", Category: "image"},
		{ID: "translation", Name: "Translation", Description: "Translate text between multiple languages", Status: "available", Category: "language"},
		{ID: "summarization", Name: "Text Summarization", Description: "Generate concise summaries of longer texts", Status: "available", Category: "text"},
		{ID: "code-generation", Name: "Code Generation", Description: "Generate code from natural language descriptions", Status: "available", Category: "advanced"},
		{ID: "neural-networks", Name: "Neural Networks", Description: "Train and use neural networks", Status: "available", Category: "advanced"},
		{ID: "knowledge-graph", Name: "Knowledge Graph", Description: "Explore connected information", Status: "available", Category: "advanced"},
	}
}

// IsKnownLocalModel reports whether name is one of the GPT-2 checkpoints.
func IsKnownLocalModel(name string) bool {
	for _, m := range localModels {
		if m.ID == name {
			return true
		}
	}
	return false
}

// CheckLocalModels reports which GPT-2 checkpoints are present under dir.
func CheckLocalModels(dir string) []models.LocalModel {
	out := make([]models.LocalModel, len(localModels))
	for i, m := range localModels {
		m.Available = localModelAvailable(dir, m.ID)
		out[i] = m
	}
	return out
}

func localModelAvailable(dir, name string) bool {
	base := filepath.Join(dir, name)
	for _, f := range localModelFiles {
		info, err := os.Stat(filepath.Join(base, f))
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}
