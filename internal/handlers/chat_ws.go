package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/services"
	"github.com/AnshRaj112/luna-backend/pkg/clientip"
	"github.com/gorilla/websocket"
)

const (
	wsReadLimit    = 64 * 1024
	wsReadTimeout  = 90 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced on the HTTP routes; the socket carries no credentials.
		return true
	},
}

// ChatClientMessage is a frame sent by the browser over the chat socket.
type ChatClientMessage struct {
	Type        string `json:"type"` // "message", "ping"
	Text        string `json:"text,omitempty"`
	UseSearch   bool   `json:"useSearch,omitempty"`
	UseDatabase bool   `json:"useDatabase,omitempty"`
	Model       string `json:"model,omitempty"`
}

// ChatWebSocket serves the streaming chat. The connection is bound to the
// session in ?session_id=, or to a new session announced with a "session" event.
// Replies arrive as typing_start, chunk..., message, typing_stop.
func ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	ip := clientip.RealClientIP(r)

	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionID, err = resolveChatSession(ctx, sessionID)
	if err != nil {
		log.Printf("⚠️ Failed to start chat session: %v", err)
		_ = conn.WriteJSON(services.ChatEvent{
			Type:      services.EventTypeError,
			Error:     "failed to start session",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	eventsCh, unsubscribe := services.DefaultChatHub().Subscribe(sessionID)
	defer unsubscribe()

	// gorilla allows one concurrent writer; replies meant only for this
	// socket go through direct and are written by the same goroutine.
	direct := make(chan services.ChatEvent, 8)
	direct <- services.ChatEvent{Type: services.EventTypeSession, SessionID: sessionID, Timestamp: time.Now().UTC()}

	go func() {
		for {
			var evt services.ChatEvent
			select {
			case <-ctx.Done():
				return
			case e, ok := <-eventsCh:
				if !ok {
					return
				}
				evt = e
			case evt = <-direct:
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(evt); err != nil {
				cancel()
				return
			}
		}
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg ChatClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "message":
			handleIncomingChatMessage(ctx, sessionID, ip, msg, direct)
		case "ping":
			sendDirect(ctx, direct, services.ChatEvent{Type: services.EventTypePong, SessionID: sessionID, Timestamp: time.Now().UTC()})
		default:
			// Ignore unknown types
		}
	}
}

// handleIncomingChatMessage answers one message and streams the reply to
// every socket on the session.
func handleIncomingChatMessage(ctx context.Context, sessionID, ip string, msg ChatClientMessage, direct chan<- services.ChatEvent) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	_ = services.PublishChatEvent(ctx, services.ChatEvent{
		Type:      services.EventTypeTypingStart,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	})

	res, err := chatService.Respond(ctx, services.ChatRequest{
		Message:     text,
		SessionID:   sessionID,
		UseSearch:   msg.UseSearch,
		UseDatabase: msg.UseDatabase,
		Model:       msg.Model,
	}, ip)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("⚠️ Chat reply failed for session %s: %v", sessionID, err)
		_ = services.PublishChatEvent(ctx, services.ChatEvent{
			Type:      services.EventTypeTypingStop,
			SessionID: sessionID,
			Timestamp: time.Now().UTC(),
		})
		sendDirect(ctx, direct, services.ChatEvent{
			Type:      services.EventTypeError,
			SessionID: sessionID,
			Error:     "failed to generate response",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	delay := 100 * time.Millisecond
	if appConfig != nil {
		delay = appConfig.WordStreamDelay
	}
	if err := services.StreamChatResult(ctx, res, delay); err != nil && ctx.Err() == nil {
		log.Printf("⚠️ Chat stream failed for session %s: %v", sessionID, err)
	}
}

// resolveChatSession keeps a known session id or starts a new session.
func resolveChatSession(ctx context.Context, id string) (string, error) {
	if id != "" {
		if _, err := sessionService.Touch(ctx, id); err == nil {
			return id, nil
		} else if !errors.Is(err, services.ErrSessionNotFound) {
			return "", apperr.From(err, apperr.SystemError)
		}
	}
	us, err := sessionService.Start(ctx)
	if err != nil {
		return "", apperr.From(err, apperr.SystemError)
	}
	return us.ID, nil
}

func sendDirect(ctx context.Context, direct chan<- services.ChatEvent, evt services.ChatEvent) {
	select {
	case direct <- evt:
	case <-ctx.Done():
	}
}
