package models

import "time"

// UserSession tracks one visitor's chat session.
type UserSession struct {
	ID           string     `json:"id"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	LastActive   time.Time  `json:"lastActive"`
	Interactions int        `json:"interactions"`
}

// Active reports whether the session has not been ended.
func (s UserSession) Active() bool {
	return s.EndTime == nil
}

type SessionStats struct {
	TotalSessions                 int     `json:"totalSessions"`
	AverageSessionLengthSeconds   float64 `json:"averageSessionLength"`
	AverageInteractionsPerSession float64 `json:"averageInteractionsPerSession"`
	ActiveSessions                int     `json:"activeSessions"`
}
