package constants

import "time"

const (
	// Interview types accepted by evaluation and question generation.
	InterviewTypeTechnical  = "technical"
	InterviewTypeBehavioral = "behavioral"
	InterviewTypeLeadership = "leadership"
	InterviewTypeGeneral    = "general"

	// Proctoring session states.
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"

	// Severity levels, ordered high > medium > low.
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"

	// Retained detection history per session.
	DetectionHistoryLimit = 100

	// Cache durations.
	JobTextCacheDuration        = 24 * time.Hour
	JobVectorCacheDuration      = 24 * time.Hour
	RecommendationCacheDuration = 10 * time.Minute
)
