package storage

import "time"

// SessionCompletedMessage is published when a proctoring session ends.
type SessionCompletedMessage struct {
	SessionID       string    `json:"session_id"`
	MockID          string    `json:"mock_id"`
	UserEmail       string    `json:"user_email,omitempty"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds int64     `json:"duration_seconds"`
	RiskScore       int       `json:"risk_score"`
	AlertsCount     int       `json:"alerts_count"`
	DetectionCount  int       `json:"detection_count"`
	SeverityLevel   string    `json:"severity_level"`
}
