package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AnshRaj112/luna-backend/internal/config"
	"github.com/AnshRaj112/luna-backend/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

const lunaSystemPrompt = "You are Luna, a friendly and empathetic AI assistant. Answer concisely in the language the user writes in."

// maxPromptHistory is how many earlier turns are sent with each completion.
const maxPromptHistory = 10

var ErrEmptyCompletion = errors.New("openai returned no choices")

// OpenAIGenerator produces chat replies from the chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator returns nil when no API key is configured.
func NewOpenAIGenerator(cfg *config.Config) *OpenAIGenerator {
	if !cfg.OpenAIConfigured() {
		return nil
	}
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.OpenAIModel,
	}
}

// UsesOpenAI reports whether a chat model id selects the remote generator.
func UsesOpenAI(modelID string) bool {
	return strings.HasPrefix(strings.ToLower(modelID), "openai")
}

// Generate answers message given the earlier turns of the conversation.
func (g *OpenAIGenerator) Generate(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: lunaSystemPrompt},
	}
	if len(history) > maxPromptHistory {
		history = history[len(history)-maxPromptHistory:]
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
