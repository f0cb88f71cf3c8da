package proctoring

import (
	"encoding/json"
	"math"
	"time"

	"i-hire-go/internal/constants"
	"i-hire-go/internal/storage/models"
)

// sessionState holds the decoded accumulator fields of one session row.
// Folding an update into it is pure; persistence happens in the service.
type sessionState struct {
	Violations       Counters
	Devices          Counters
	MovementPatterns Counters
	History          []HistoryEntry
	Alerts           []Alert
}

// decodeState parses the JSON accumulator columns. Corrupt or empty columns
// decode to empty maps and slices rather than failing the update.
func decodeState(session *models.ProctoringSession) *sessionState {
	state := &sessionState{
		Violations:       Counters{},
		Devices:          Counters{},
		MovementPatterns: Counters{},
		History:          []HistoryEntry{},
		Alerts:           []Alert{},
	}

	decodeInto(session.Violations, &state.Violations)
	decodeInto(session.Devices, &state.Devices)
	decodeInto(session.MovementPatterns, &state.MovementPatterns)
	decodeInto(session.DetectionHistory, &state.History)
	decodeInto(session.Alerts, &state.Alerts)

	if state.Violations == nil {
		state.Violations = Counters{}
	}
	if state.Devices == nil {
		state.Devices = Counters{}
	}
	if state.MovementPatterns == nil {
		state.MovementPatterns = Counters{}
	}

	return state
}

func decodeInto(raw []byte, target interface{}) {
	if len(raw) == 0 {
		return
	}
	// Ignore decode errors: a corrupt column resets to its zero accumulator.
	_ = json.Unmarshal(raw, target)
}

// apply folds one detection update into the state: appends the sample to the
// capped history, appends alerts, and bumps the violation, device, and
// movement counters.
func (s *sessionState) apply(update *DetectionUpdate, now time.Time) {
	s.History = append(s.History, HistoryEntry{
		Timestamp:       now,
		DetectionData:   update.DetectionData,
		RiskScore:       update.RiskScore,
		EnhancedMetrics: update.EnhancedMetrics,
	})
	if len(s.History) > constants.DetectionHistoryLimit {
		s.History = s.History[len(s.History)-constants.DetectionHistoryLimit:]
	}

	for _, alert := range update.Alerts {
		s.Alerts = append(s.Alerts, alert)
		s.Violations.Increment(alert.Type)
	}

	if update.EnhancedMetrics != nil {
		if update.EnhancedMetrics.DeviceType != "" {
			s.Devices.Increment(update.EnhancedMetrics.DeviceType)
		}
		if update.EnhancedMetrics.MovementPattern != "" {
			s.MovementPatterns.Increment(update.EnhancedMetrics.MovementPattern)
		}
	}
}

// riskScore is the rounded mean of all positive risk scores in the retained
// history. Zero-valued samples do not count toward the denominator.
func (s *sessionState) riskScore() int {
	var sum float64
	var n int
	for _, entry := range s.History {
		if entry.RiskScore > 0 {
			sum += entry.RiskScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// peakRisk is the highest positive risk score in the retained history.
func (s *sessionState) peakRisk() int {
	peak := 0.0
	for _, entry := range s.History {
		if entry.RiskScore > peak {
			peak = entry.RiskScore
		}
	}
	return int(math.Round(peak))
}

// severityLevel classifies a session; high is checked before medium.
func severityLevel(riskScore, alertCount int) string {
	switch {
	case riskScore >= 70 || alertCount >= 10:
		return constants.SeverityHigh
	case riskScore >= 40 || alertCount >= 5:
		return constants.SeverityMedium
	default:
		return constants.SeverityLow
	}
}

// finalSeverityLevel is the end-of-session classification, which also
// considers the total violation count.
func finalSeverityLevel(riskScore, alertCount, violations int) string {
	switch {
	case riskScore >= 70 || alertCount >= 10 || violations >= 15:
		return constants.SeverityHigh
	case riskScore >= 40 || alertCount >= 5 || violations >= 8:
		return constants.SeverityMedium
	default:
		return constants.SeverityLow
	}
}

// mostCommonViolation returns the violation type with the highest count,
// or "none" when no violations were recorded.
func mostCommonViolation(violations Counters) string {
	best := "none"
	bestCount := 0
	for violationType, count := range violations {
		if count > bestCount || (count == bestCount && bestCount > 0 && violationType < best) {
			best = violationType
			bestCount = count
		}
	}
	return best
}

// analytics computes the final session roll-up from the retained state.
func (s *sessionState) analytics(duration int64) SessionAnalytics {
	return SessionAnalytics{
		AverageRisk:         s.riskScore(),
		PeakRisk:            s.peakRisk(),
		TotalViolations:     s.Violations.Total(),
		MostCommonViolation: mostCommonViolation(s.Violations),
		SessionDuration:     duration,
		TotalDetections:     len(s.History),
		TotalAlerts:         len(s.Alerts),
	}
}

// elapsedSeconds floors the time since start to whole seconds.
func elapsedSeconds(start, now time.Time) int64 {
	if start.IsZero() || now.Before(start) {
		return 0
	}
	return int64(math.Floor(now.Sub(start).Seconds()))
}
