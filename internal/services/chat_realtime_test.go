package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatHub_SubscribeFanOut(t *testing.T) {
	hub := NewChatHub()
	a, unsubA := hub.Subscribe("s1")
	b, unsubB := hub.Subscribe("s1")
	other, unsubOther := hub.Subscribe("s2")
	defer unsubOther()

	hub.FanOut(ChatEvent{Type: EventTypeChunk, SessionID: "s1", Text: "hi "})
	assert.Equal(t, "hi ", (<-a).Text)
	assert.Equal(t, "hi ", (<-b).Text)
	assert.Len(t, other, 0)

	unsubA()
	unsubA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, hub.Subscribers("s1"))

	unsubB()
	assert.Equal(t, 0, hub.Subscribers("s1"))
}

func TestChatHub_DropsWhenFull(t *testing.T) {
	hub := NewChatHub()
	ch, unsub := hub.Subscribe("full")
	defer unsub()

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.FanOut(ChatEvent{Type: EventTypeChunk, SessionID: "full"})
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestStreamChatResult(t *testing.T) {
	events, unsub := DefaultChatHub().Subscribe("stream-test")
	defer unsub()

	res := &ChatResult{
		SessionID:        "stream-test",
		AssistantMessage: models.ChatMessage{SessionID: "stream-test", Role: models.RoleAssistant, Content: "hello there friend"},
	}
	require.NoError(t, StreamChatResult(context.Background(), res, 0))

	var types, chunks []string
	for len(events) > 0 {
		e := <-events
		types = append(types, e.Type)
		if e.Type == EventTypeChunk {
			chunks = append(chunks, e.Text)
		}
		if e.Type == EventTypeMessage {
			require.NotNil(t, e.Message)
			assert.Equal(t, "hello there friend", e.Message.Content)
		}
	}
	assert.Equal(t, []string{EventTypeChunk, EventTypeChunk, EventTypeChunk, EventTypeMessage, EventTypeTypingStop}, types)
	assert.Equal(t, []string{"hello ", "there ", "friend "}, chunks)
}

func TestStreamChatResult_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := &ChatResult{SessionID: "cancelled", AssistantMessage: models.ChatMessage{Content: "a b"}}
	assert.ErrorIs(t, StreamChatResult(ctx, res, 0), context.Canceled)
}
