package services

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/luna-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestSessionService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService()
	now := fixedNow()
	svc.now = func() time.Time { return now }

	us, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.True(t, us.Active())

	now = now.Add(time.Minute)
	us, err = svc.Touch(ctx, us.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, us.Interactions)

	now = now.Add(time.Minute)
	ended, err := svc.End(ctx, us.ID)
	require.NoError(t, err)
	require.NotNil(t, ended.EndTime)
	assert.Equal(t, fixedNow().Add(2*time.Minute), *ended.EndTime)

	// ending again keeps the first end time
	now = now.Add(time.Hour)
	again, err := svc.End(ctx, us.ID)
	require.NoError(t, err)
	assert.Equal(t, *ended.EndTime, *again.EndTime)

	_, err = svc.Touch(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_Expiry(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService()
	now := fixedNow()
	svc.now = func() time.Time { return now }

	us, err := svc.Start(ctx)
	require.NoError(t, err)

	now = now.Add(SessionIdleTimeout + time.Second)
	_, err = svc.Get(ctx, us.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSessions)
}

func TestComputeSessionStats(t *testing.T) {
	start := fixedNow()
	end := start.Add(90 * time.Second)
	stats := ComputeSessionStats([]models.UserSession{
		{ID: "a", StartTime: start, EndTime: &end, Interactions: 4},
		{ID: "b", StartTime: start, Interactions: 2},
	})

	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, 90.0, stats.AverageSessionLengthSeconds)
	assert.Equal(t, 3.0, stats.AverageInteractionsPerSession)

	assert.Equal(t, models.SessionStats{}, ComputeSessionStats(nil))
}
