package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/models"
)

// ChatRequest is the body of POST /api/chat and of WebSocket message frames.
type ChatRequest struct {
	Message        string `json:"message"`
	SessionID      string `json:"sessionId,omitempty"`
	UseSearch      bool   `json:"useSearch,omitempty"`
	UseDatabase    bool   `json:"useDatabase,omitempty"`
	Model          string `json:"model,omitempty"`
	SaveToDatabase bool   `json:"saveToDatabase,omitempty"`
}

type ChatResult struct {
	SessionID        string             `json:"sessionId"`
	UserMessage      models.ChatMessage `json:"userMessage"`
	AssistantMessage models.ChatMessage `json:"assistantMessage"`
	Flagged          bool               `json:"flagged,omitempty"`
}

// ChatService answers chat messages: content filter, simulated typing delay,
// then the first generator that applies (OpenAI, stored answers, web search,
// rules). Both turns go to the transcript.
type ChatService struct {
	store     ResponseStore
	search    *SearchService
	assistant *Assistant
	generator *OpenAIGenerator
	sessions  *SessionService
	delay     time.Duration
}

// NewChatService wires the generators. search and generator may be nil.
func NewChatService(store ResponseStore, search *SearchService, assistant *Assistant, generator *OpenAIGenerator, sessions *SessionService, delay time.Duration) *ChatService {
	return &ChatService{
		store:     store,
		search:    search,
		assistant: assistant,
		generator: generator,
		sessions:  sessions,
		delay:     delay,
	}
}

// Respond handles one user message. clientIP is only used for content flags.
func (s *ChatService) Respond(ctx context.Context, req ChatRequest, clientIP string) (*ChatResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperr.Newf(apperr.InputRequiredMissing, "메시지가 비어있습니다.")
	}

	sessionID, err := s.ensureSession(ctx, req.SessionID)
	if err != nil {
		return nil, apperr.From(err, apperr.SystemError)
	}

	// history before this turn, for the remote generator
	history, _, err := LoadChatMessagesWithCache(ctx, sessionID, maxPromptHistory)
	if err != nil {
		log.Printf("⚠️ Failed to load chat history for %s: %v", sessionID, err)
	}

	userMsg := RecordChatMessage(models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleUser,
		Content:   message,
	})

	if err := sleepContext(ctx, s.delay); err != nil {
		return nil, err
	}

	result := &ChatResult{SessionID: sessionID, UserMessage: userMsg}

	reply, source := "", ""
	if safety, flagType, matched, flagged := ScreenMessage(message); flagged {
		reply, source = safety, SourceSafety
		result.Flagged = true
		RecordFlagAsync(models.ContentFlag{
			SessionID: sessionID,
			IPAddress: clientIP,
			Type:      flagType,
			Matched:   strings.Join(matched, ", "),
		})
	} else {
		reply, source = s.generate(ctx, req, message, history)
	}

	result.AssistantMessage = RecordChatMessage(models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   reply,
		Model:     req.Model,
		Source:    source,
	})

	if req.SaveToDatabase && !result.Flagged && s.store != nil {
		if _, err := s.store.Create(ctx, models.Response{
			Question: message,
			Answer:   reply,
			Model:    NormalizeModelID(req.Model),
		}); err != nil {
			log.Printf("⚠️ Failed to save chat response: %v", err)
		}
	}
	return result, nil
}

func (s *ChatService) ensureSession(ctx context.Context, id string) (string, error) {
	if s.sessions == nil {
		if id == "" {
			return "anonymous", nil
		}
		return id, nil
	}
	if id != "" {
		if _, err := s.sessions.Touch(ctx, id); err == nil {
			return id, nil
		} else if !errors.Is(err, ErrSessionNotFound) {
			return "", err
		}
	}
	us, err := s.sessions.Start(ctx)
	if err != nil {
		return "", err
	}
	if _, err := s.sessions.Touch(ctx, us.ID); err != nil {
		return "", err
	}
	return us.ID, nil
}

func (s *ChatService) generate(ctx context.Context, req ChatRequest, message string, history []models.ChatMessage) (string, string) {
	if UsesOpenAI(req.Model) && s.generator != nil {
		reply, err := s.generator.Generate(ctx, history, message)
		if err == nil && reply != "" {
			return reply, SourceOpenAI
		}
		log.Printf("⚠️ OpenAI generation failed, using rule-based reply: %v", err)
	}

	if req.UseDatabase && s.store != nil {
		records, err := s.store.List(ctx, models.ListOptions{})
		if err != nil {
			log.Printf("⚠️ Failed to read stored responses: %v", err)
		} else if match := FindSimilar(records, message); match != nil {
			return DatabaseReply(match.Answer), SourceDatabase
		}
	}

	if req.UseSearch && s.search != nil && ShouldTriggerSearch(message) {
		res, err := s.search.Search(ctx, OptimizeQuery(message), SearchOptions{Num: 3})
		if err != nil {
			log.Printf("⚠️ Chat search failed: %v", err)
		} else if info := ExtractRelevantInfo(res.Items); info != "" {
			return SearchReply(info, message), SourceSearch
		}
	}

	return s.assistant.Reply(message), SourceRules
}

// ChunkWords splits a reply into the word chunks streamed to clients, each
// with its trailing space.
func ChunkWords(text string) []string {
	words := strings.Fields(text)
	chunks := make([]string, len(words))
	for i, w := range words {
		chunks[i] = w + " "
	}
	return chunks
}
