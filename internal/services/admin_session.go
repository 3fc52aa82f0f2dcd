package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/database"
	"github.com/redis/go-redis/v9"
)

const (
	// AdminSessionDuration is how long an admin token stays valid after login.
	AdminSessionDuration = 24 * time.Hour
	// AdminSessionKeyPrefix is the Redis key prefix for admin sessions
	AdminSessionKeyPrefix = "admin_session:"
)

// AdminSessions issues bearer tokens after an admin key login so the key
// itself is not sent on every request. Tokens live in Redis when configured.
type AdminSessions struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewAdminSessions() *AdminSessions {
	return &AdminSessions{tokens: make(map[string]time.Time), now: time.Now}
}

// Create returns a new session token.
func (s *AdminSessions) Create(ctx context.Context) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	if database.RedisClient != nil {
		if err := database.RedisClient.Set(ctx, AdminSessionKeyPrefix+token, "admin", AdminSessionDuration).Err(); err != nil {
			return "", err
		}
		return token, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.tokens[token] = s.now().Add(AdminSessionDuration)
	return token, nil
}

// Validate reports whether token is a live admin session.
func (s *AdminSessions) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	if database.RedisClient != nil {
		err := database.RedisClient.Get(ctx, AdminSessionKeyPrefix+token).Err()
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return err == nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[token]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.tokens, token)
		return false, nil
	}
	return true, nil
}

// Invalidate removes a session (logout).
func (s *AdminSessions) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if database.RedisClient != nil {
		return database.RedisClient.Del(ctx, AdminSessionKeyPrefix+token).Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

func (s *AdminSessions) sweepLocked() {
	now := s.now()
	for token, exp := range s.tokens {
		if !now.Before(exp) {
			delete(s.tokens, token)
		}
	}
}
