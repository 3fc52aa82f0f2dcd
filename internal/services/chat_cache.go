package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/database"
	"github.com/AnshRaj112/luna-backend/internal/models"
)

const (
	chatRecentKeyPrefix = "chat:session:"
	chatRecentKeySuffix = ":recent"
	chatRecentMaxLen    = 50
	chatRecentTTL       = 24 * time.Hour

	chatRecentSweepEvery = time.Minute
)

func chatRecentKey(sessionID string) string {
	return chatRecentKeyPrefix + sessionID + chatRecentKeySuffix
}

// memoryRecent holds the recent list per session when Redis is not connected.
// Each slice is newest first, like the Redis list. Lists idle for longer than
// chatRecentTTL are dropped, mirroring the Redis key expiry.
var memoryRecent = struct {
	sync.Mutex
	lists     map[string]*recentList
	lastSweep time.Time
	now       func() time.Time
}{lists: make(map[string]*recentList), now: time.Now}

type recentList struct {
	msgs     []models.ChatMessage
	lastPush time.Time
}

// sweepRecentLocked drops idle lists, at most once per chatRecentSweepEvery.
// memoryRecent must be locked.
func sweepRecentLocked(now time.Time) {
	if now.Sub(memoryRecent.lastSweep) < chatRecentSweepEvery {
		return
	}
	memoryRecent.lastSweep = now
	for id, l := range memoryRecent.lists {
		if now.Sub(l.lastPush) > chatRecentTTL {
			delete(memoryRecent.lists, id)
		}
	}
}

// PushMessageToRecentCache adds a message to the recent cache (newest at head)
// and keeps the last 50.
func PushMessageToRecentCache(msg models.ChatMessage) {
	if database.RedisClient == nil {
		memoryRecent.Lock()
		defer memoryRecent.Unlock()
		now := memoryRecent.now()
		sweepRecentLocked(now)
		l := memoryRecent.lists[msg.SessionID]
		if l == nil {
			l = &recentList{}
			memoryRecent.lists[msg.SessionID] = l
		}
		l.msgs = append([]models.ChatMessage{msg}, l.msgs...)
		if len(l.msgs) > chatRecentMaxLen {
			l.msgs = l.msgs[:chatRecentMaxLen]
		}
		l.lastPush = now
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := chatRecentKey(msg.SessionID)
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	pipe := database.RedisClient.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, chatRecentMaxLen-1)
	pipe.Expire(ctx, key, chatRecentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("chat_cache: push failed for session %s: %v", msg.SessionID, err)
	}
}

// GetRecentMessagesFromCache returns the cached messages of a session, oldest first.
// Returns (messages, true) on hit, (nil, false) on miss.
func GetRecentMessagesFromCache(ctx context.Context, sessionID string) ([]models.ChatMessage, bool) {
	if database.RedisClient == nil {
		memoryRecent.Lock()
		defer memoryRecent.Unlock()
		now := memoryRecent.now()
		sweepRecentLocked(now)
		l := memoryRecent.lists[sessionID]
		if l == nil || len(l.msgs) == 0 {
			return nil, false
		}
		if now.Sub(l.lastPush) > chatRecentTTL {
			delete(memoryRecent.lists, sessionID)
			return nil, false
		}
		out := append([]models.ChatMessage(nil), l.msgs...)
		reverseMessages(out)
		return out, true
	}

	raw, err := database.RedisClient.LRange(ctx, chatRecentKey(sessionID), 0, -1).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}

	var msgs []models.ChatMessage
	for i := len(raw) - 1; i >= 0; i-- {
		var m models.ChatMessage
		if json.Unmarshal([]byte(raw[i]), &m) != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, true
}

// LoadChatMessagesWithCache returns the latest messages of a session, oldest
// first. The recent cache is tried first; on a miss Mongo is read and the
// cache warmed.
func LoadChatMessagesWithCache(ctx context.Context, sessionID string, limit int64) ([]models.ChatMessage, bool, error) {
	if limit <= 0 || limit > chatRecentMaxLen {
		limit = chatRecentMaxLen
	}
	if cached, ok := GetRecentMessagesFromCache(ctx, sessionID); ok {
		out := cached
		if int64(len(cached)) > limit {
			out = cached[int64(len(cached))-limit:]
		}
		return out, int64(len(cached)) > limit, nil
	}

	msgs, hasMore, err := LoadChatMessages(ctx, sessionID, nil, limit)
	if err != nil {
		return nil, false, err
	}
	if len(msgs) > 0 {
		WarmRecentCache(ctx, sessionID, msgs)
	}
	return msgs, hasMore, nil
}

// WarmRecentCache stores oldest-first messages in Redis (oldest at tail).
func WarmRecentCache(ctx context.Context, sessionID string, msgs []models.ChatMessage) {
	if database.RedisClient == nil || len(msgs) == 0 {
		return
	}

	key := chatRecentKey(sessionID)
	pipe := database.RedisClient.Pipeline()
	for i := len(msgs) - 1; i >= 0; i-- {
		data, err := json.Marshal(msgs[i])
		if err != nil {
			continue
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.LTrim(ctx, key, 0, chatRecentMaxLen-1)
	pipe.Expire(ctx, key, chatRecentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("chat_cache: warm failed for session %s: %v", sessionID, err)
	}
}
