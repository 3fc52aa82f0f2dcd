package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/AnshRaj112/luna-backend/internal/services"
	"github.com/AnshRaj112/luna-backend/pkg/clientip"
)

// LoadChatHistoryResponse is returned when loading a session transcript.
type LoadChatHistoryResponse struct {
	Success  bool                 `json:"success"`
	Messages []models.ChatMessage `json:"messages"`
	HasMore  bool                 `json:"has_more"`
}

// ChatWithSearchRequest is the body sent by the streaming chat UI.
type ChatWithSearchRequest struct {
	Messages []models.IncomingMessage `json:"messages"`
	ModelID  string                   `json:"modelId"`
}

// StreamEvent is one server-sent event of /api/chat-with-search.
type StreamEvent struct {
	Type  string `json:"type"` // "text" or "error"
	Value string `json:"value"`
}

// Chat answers one message and returns both turns of the exchange.
func Chat(w http.ResponseWriter, r *http.Request) {
	var req services.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := chatService.Respond(r.Context(), req, clientip.RealClientIP(r))
	if err != nil {
		if r.Context().Err() != nil {
			// client went away during the typing delay
			return
		}
		writeError(w, err, "응답을 생성하는 중 오류가 발생했습니다.")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ChatWithSearch streams a canned reply word by word as server-sent events.
func ChatWithSearch(w http.ResponseWriter, r *http.Request) {
	var req ChatWithSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorMessage(w, http.StatusInternalServerError, apperr.SystemError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	delay := 100 * time.Millisecond
	if appConfig != nil {
		delay = appConfig.WordStreamDelay
	}

	// the reply is canned, so a conversation without a user turn still streams
	chunks := services.ChunkWords(assistant.StreamResponse())
	if len(chunks) == 0 {
		writeStreamEvent(w, flusher, StreamEvent{Type: "error", Value: "Failed to generate response"})
		return
	}
	for i, chunk := range chunks {
		if i > 0 {
			if err := waitContext(r.Context(), delay); err != nil {
				return
			}
		}
		if err := writeStreamEvent(w, flusher, StreamEvent{Type: "text", Value: chunk}); err != nil {
			log.Printf("⚠️ Stream write failed: %v", err)
			return
		}
	}
}

// LoadChatHistory returns the transcript of a session, oldest first.
// Query params:
//   session_id (required)
//   before     (optional RFC3339 timestamp for pagination)
//   limit      (optional, default 50)
func LoadChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, "session_id is required")
		return
	}

	limit := int64(50)
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if parsed, err := strconv.ParseInt(lStr, 10, 64); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var before *time.Time
	if bStr := r.URL.Query().Get("before"); bStr != "" {
		if t, err := time.Parse(time.RFC3339, bStr); err == nil {
			before = &t
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		msgs    []models.ChatMessage
		hasMore bool
		err     error
	)
	if before != nil {
		msgs, hasMore, err = services.LoadChatMessages(ctx, sessionID, before, limit)
	} else {
		msgs, hasMore, err = services.LoadChatMessagesWithCache(ctx, sessionID, limit)
	}
	if err != nil {
		writeError(w, apperr.New(apperr.DatabaseQueryFailed, err, nil), "failed to load messages")
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, LoadChatHistoryResponse{
		Success:  true,
		Messages: msgs,
		HasMore:  hasMore,
	})
}

func writeStreamEvent(w http.ResponseWriter, flusher http.Flusher, evt StreamEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
