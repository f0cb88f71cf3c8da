// Package proctoring folds per-question cheating-detection events into
// cumulative per-session statistics.
package proctoring

import (
	"encoding/json"
	"time"
)

// Alert is one proctoring alert raised by the client-side detector.
type Alert struct {
	Type      string `json:"type"`
	Severity  string `json:"severity,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// EnhancedMetrics carries the auxiliary measurements of one detection tick.
type EnhancedMetrics struct {
	DeviceType      string  `json:"deviceType,omitempty"`
	MovementPattern string  `json:"movementPattern,omitempty"`
	FaceQuality     float64 `json:"faceQuality,omitempty"`
	NoiseLevel      float64 `json:"noiseLevel,omitempty"`
}

// HistoryEntry is one retained detection sample in the rolling history.
type HistoryEntry struct {
	Timestamp       time.Time        `json:"timestamp"`
	DetectionData   json.RawMessage  `json:"detectionData,omitempty"`
	RiskScore       float64          `json:"riskScore"`
	EnhancedMetrics *EnhancedMetrics `json:"enhancedMetrics,omitempty"`
}

// Counters is a typed count map (violation type, device type, or movement
// pattern → occurrences). Unknown categories are accepted as-is.
type Counters map[string]int

// Increment bumps a counter, treating an empty key as "unknown".
func (c Counters) Increment(key string) {
	if key == "" {
		key = "unknown"
	}
	c[key]++
}

// Total sums all counters.
func (c Counters) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// DetectionUpdate is the payload of one aggregation call.
type DetectionUpdate struct {
	SessionID       string           `json:"sessionId"`
	MockID          string           `json:"mockId"`
	DetectionData   json.RawMessage  `json:"detectionData,omitempty"`
	RiskScore       float64          `json:"riskScore"`
	Alerts          []Alert          `json:"alerts,omitempty"`
	EnhancedMetrics *EnhancedMetrics `json:"enhancedMetrics,omitempty"`
}

// UpdateResult reports the session statistics after one aggregation step.
type UpdateResult struct {
	SessionID            string `json:"sessionId"`
	MockID               string `json:"mockId"`
	SessionRiskScore     int    `json:"sessionRiskScore"`
	SessionSeverityLevel string `json:"sessionSeverityLevel"`
	SessionDuration      int64  `json:"sessionDuration"`
	AlertCount           int    `json:"alertCount"`
	DetectionCount       int    `json:"detectionCount"`
}

// SessionAnalytics is the final roll-up computed when a session ends.
type SessionAnalytics struct {
	AverageRisk         int    `json:"averageRisk"`
	PeakRisk            int    `json:"peakRisk"`
	TotalViolations     int    `json:"totalViolations"`
	MostCommonViolation string `json:"mostCommonViolation"`
	SessionDuration     int64  `json:"sessionDuration"`
	TotalDetections     int    `json:"totalDetections"`
	TotalAlerts         int    `json:"totalAlerts"`
}

// EndResult is returned when a session is closed.
type EndResult struct {
	SessionID          string           `json:"sessionId"`
	MockID             string           `json:"mockId"`
	UserEmail          string           `json:"userEmail,omitempty"`
	SessionStartTime   time.Time        `json:"sessionStartTime"`
	SessionEndTime     time.Time        `json:"sessionEndTime"`
	SessionDuration    int64            `json:"sessionDuration"`
	FinalRiskScore     int              `json:"finalRiskScore"`
	FinalSeverityLevel string           `json:"finalSeverityLevel"`
	Analytics          SessionAnalytics `json:"analytics"`
}

// SessionView is one decoded session aggregate as served to clients.
type SessionView struct {
	ID                uint64          `json:"id"`
	SessionID         string          `json:"sessionId"`
	MockID            string          `json:"mockId"`
	UserEmail         string          `json:"userEmail,omitempty"`
	Status            string          `json:"status"`
	StartedAt         time.Time       `json:"sessionStartTime"`
	EndedAt           *time.Time      `json:"sessionEndTime,omitempty"`
	Duration          int64           `json:"sessionDuration"`
	RiskScore         int             `json:"sessionRiskScore"`
	AlertsCount       int             `json:"alertCount"`
	SeverityLevel     string          `json:"sessionSeverityLevel"`
	Violations        Counters        `json:"violations"`
	Devices           Counters        `json:"devices"`
	MovementPatterns  Counters        `json:"movementPatterns"`
	DetectionHistory  []HistoryEntry  `json:"detectionHistory"`
	Alerts            []Alert         `json:"alerts"`
	EnhancedMetrics   json.RawMessage `json:"enhancedMetrics,omitempty"`
	DetectionSettings json.RawMessage `json:"detectionSettings,omitempty"`
	FinalAnalytics    json.RawMessage `json:"finalAnalytics,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// SummaryStats aggregates across all sessions of one mock interview.
type SummaryStats struct {
	TotalSessions     int            `json:"totalSessions"`
	CompletedSessions int            `json:"completedSessions"`
	ActiveSessions    int            `json:"activeSessions"`
	AverageRiskScore  int            `json:"averageRiskScore"`
	TotalAlerts       int            `json:"totalAlerts"`
	SeverityBreakdown map[string]int `json:"severityBreakdown"`
}

// SessionsResult is the list response for a mock interview's sessions.
type SessionsResult struct {
	Sessions     []SessionView `json:"sessions"`
	SummaryStats *SummaryStats `json:"summaryStats,omitempty"`
	TotalCount   int           `json:"totalCount"`
}
