package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/database"
	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionIdleTimeout is how long an untouched session is kept
	SessionIdleTimeout = 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for chat sessions
	SessionKeyPrefix = "chat_session:"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionService tracks chat sessions in Redis when connected, in memory otherwise.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*models.UserSession
	now      func() time.Time
}

func NewSessionService() *SessionService {
	return &SessionService{
		sessions: make(map[string]*models.UserSession),
		now:      time.Now,
	}
}

// Start creates a new session.
func (s *SessionService) Start(ctx context.Context) (*models.UserSession, error) {
	now := s.now().UTC()
	session := &models.UserSession{
		ID:         uuid.NewString(),
		StartTime:  now,
		LastActive: now,
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Touch records one interaction and refreshes the idle timeout.
func (s *SessionService) Touch(ctx context.Context, id string) (*models.UserSession, error) {
	return s.update(ctx, id, func(us *models.UserSession) {
		us.Interactions++
		us.LastActive = s.now().UTC()
	})
}

// End marks the session as finished. Ending twice keeps the first end time.
func (s *SessionService) End(ctx context.Context, id string) (*models.UserSession, error) {
	return s.update(ctx, id, func(us *models.UserSession) {
		if us.EndTime == nil {
			end := s.now().UTC()
			us.EndTime = &end
			us.LastActive = end
		}
	})
}

// Get returns the session, or ErrSessionNotFound when it is unknown or expired.
func (s *SessionService) Get(ctx context.Context, id string) (*models.UserSession, error) {
	if database.RedisClient != nil {
		raw, err := database.RedisClient.Get(ctx, SessionKeyPrefix+id).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		if err != nil {
			return nil, err
		}
		var us models.UserSession
		if err := json.Unmarshal(raw, &us); err != nil {
			return nil, err
		}
		return &us, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	us, ok := s.sessions[id]
	if !ok || s.expired(us) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	out := *us
	return &out, nil
}

// Stats aggregates every live session.
func (s *SessionService) Stats(ctx context.Context) (models.SessionStats, error) {
	all, err := s.all(ctx)
	if err != nil {
		return models.SessionStats{}, err
	}
	return ComputeSessionStats(all), nil
}

// ComputeSessionStats averages session length over completed sessions and
// interactions over all sessions.
func ComputeSessionStats(sessions []models.UserSession) models.SessionStats {
	stats := models.SessionStats{TotalSessions: len(sessions)}
	if len(sessions) == 0 {
		return stats
	}

	var totalLength time.Duration
	completed, interactions := 0, 0
	for _, us := range sessions {
		interactions += us.Interactions
		if us.EndTime == nil {
			stats.ActiveSessions++
			continue
		}
		completed++
		totalLength += us.EndTime.Sub(us.StartTime)
	}
	if completed > 0 {
		stats.AverageSessionLengthSeconds = totalLength.Seconds() / float64(completed)
	}
	stats.AverageInteractionsPerSession = float64(interactions) / float64(len(sessions))
	return stats
}

func (s *SessionService) update(ctx context.Context, id string, fn func(*models.UserSession)) (*models.UserSession, error) {
	if database.RedisClient == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		us, ok := s.sessions[id]
		if !ok || s.expired(us) {
			delete(s.sessions, id)
			return nil, ErrSessionNotFound
		}
		fn(us)
		out := *us
		return &out, nil
	}

	us, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(us)
	if err := s.save(ctx, us); err != nil {
		return nil, err
	}
	return us, nil
}

func (s *SessionService) save(ctx context.Context, us *models.UserSession) error {
	if database.RedisClient != nil {
		data, err := json.Marshal(us)
		if err != nil {
			return err
		}
		return database.RedisClient.Set(ctx, SessionKeyPrefix+us.ID, data, SessionIdleTimeout).Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *us
	s.sessions[us.ID] = &stored
	return nil
}

func (s *SessionService) all(ctx context.Context) ([]models.UserSession, error) {
	var out []models.UserSession

	if database.RedisClient != nil {
		iter := database.RedisClient.Scan(ctx, 0, SessionKeyPrefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			raw, err := database.RedisClient.Get(ctx, iter.Val()).Bytes()
			if err != nil {
				continue // expired between SCAN and GET
			}
			var us models.UserSession
			if json.Unmarshal(raw, &us) == nil {
				out = append(out, us)
			}
		}
		return out, iter.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, us := range s.sessions {
		if s.expired(us) {
			delete(s.sessions, id)
			continue
		}
		out = append(out, *us)
	}
	return out, nil
}

func (s *SessionService) expired(us *models.UserSession) bool {
	return s.now().Sub(us.LastActive) > SessionIdleTimeout
}
