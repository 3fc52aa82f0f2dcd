package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/database"
	"github.com/AnshRaj112/luna-backend/internal/models"
)

const (
	EventTypeSession     = "session"
	EventTypeTypingStart = "typing_start"
	EventTypeTypingStop  = "typing_stop"
	EventTypeChunk       = "chunk"
	EventTypeMessage     = "message"
	EventTypeError       = "error"
	EventTypePong        = "pong"

	chatChannelPrefix = "chat:session:"
	subscriberBuffer  = 64
)

// ChatEvent is the payload sent to WebSocket clients and over Redis pub/sub.
type ChatEvent struct {
	Type      string              `json:"type"`
	SessionID string              `json:"sessionId,omitempty"`
	Text      string              `json:"text,omitempty"`
	Message   *models.ChatMessage `json:"message,omitempty"`
	Error     string              `json:"error,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// ChatHub fans events out to every local connection watching a chat session,
// so several tabs on one session see the same stream.
type ChatHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan ChatEvent]struct{}
}

func NewChatHub() *ChatHub {
	return &ChatHub{subs: make(map[string]map[chan ChatEvent]struct{})}
}

var (
	chatHub      = NewChatHub()
	redisStarted sync.Once
)

// DefaultChatHub is the process-wide hub fed by PublishChatEvent.
func DefaultChatHub() *ChatHub {
	return chatHub
}

// Subscribe returns a channel of events for sessionID and a func that
// unsubscribes and closes it.
func (h *ChatHub) Subscribe(sessionID string) (<-chan ChatEvent, func()) {
	ch := make(chan ChatEvent, subscriberBuffer)

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan ChatEvent]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[sessionID], ch)
			if len(h.subs[sessionID]) == 0 {
				delete(h.subs, sessionID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// FanOut delivers event to local subscribers. Slow subscribers drop events
// rather than block the publisher.
func (h *ChatHub) FanOut(event ChatEvent) {
	if event.SessionID == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[event.SessionID] {
		select {
		case ch <- event:
		default:
			log.Printf("⚠️ Dropping %s event for slow subscriber on session %s", event.Type, event.SessionID)
		}
	}
}

// Subscribers counts local connections for sessionID.
func (h *ChatHub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[sessionID])
}

// StartRedisChatSubscriber ensures a single shared Redis listener per instance.
// Without Redis, PublishChatEvent fans out locally and no listener is needed.
func StartRedisChatSubscriber(ctx context.Context) {
	if database.RedisClient == nil {
		return
	}
	redisStarted.Do(func() {
		go runRedisSubscriber(ctx)
	})
}

func runRedisSubscriber(ctx context.Context) {
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := database.RedisClient.PSubscribe(ctx, chatChannelPrefix+"*")
			defer pubsub.Close()

			log.Printf("✅ Chat Redis subscriber started (pattern: %s*)", chatChannelPrefix)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("⚠️ Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}
				backoff = time.Second

				var event ChatEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("⚠️ Failed to unmarshal chat event: %v", err)
					continue
				}
				if event.SessionID == "" {
					event.SessionID = strings.TrimPrefix(msg.Channel, chatChannelPrefix)
				}
				chatHub.FanOut(event)
			}
		}()
	}
}

// PublishChatEvent sends event to every connection on its session, through
// Redis when configured so other instances see it too.
func PublishChatEvent(ctx context.Context, event ChatEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if database.RedisClient == nil {
		chatHub.FanOut(event)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := database.RedisClient.Publish(ctx, chatChannelPrefix+event.SessionID, data).Err(); err != nil {
		// deliver locally at least
		chatHub.FanOut(event)
		return err
	}
	return nil
}

// StreamChatResult publishes the assistant reply of res word by word, then
// the full message and typing_stop. Cancelling ctx stops between words.
func StreamChatResult(ctx context.Context, res *ChatResult, wordDelay time.Duration) error {
	for _, chunk := range ChunkWords(res.AssistantMessage.Content) {
		if err := PublishChatEvent(ctx, ChatEvent{Type: EventTypeChunk, SessionID: res.SessionID, Text: chunk}); err != nil {
			log.Printf("⚠️ Failed to publish chunk: %v", err)
		}
		if err := sleepContext(ctx, wordDelay); err != nil {
			return err
		}
	}

	msg := res.AssistantMessage
	if err := PublishChatEvent(ctx, ChatEvent{Type: EventTypeMessage, SessionID: res.SessionID, Message: &msg}); err != nil {
		log.Printf("⚠️ Failed to publish message: %v", err)
	}
	return PublishChatEvent(ctx, ChatEvent{Type: EventTypeTypingStop, SessionID: res.SessionID})
}
