package proctoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"i-hire-go/internal/constants"
)

// ErrInvalidStatsDate is returned when the stats day is not YYYY-MM-DD.
var ErrInvalidStatsDate = errors.New("invalid date, expected YYYY-MM-DD")

// DailyStats aggregates the completed sessions of one UTC day.
type DailyStats struct {
	Date              string         `json:"date"`
	SessionsCompleted int            `json:"sessionsCompleted"`
	TotalAlerts       int            `json:"totalAlerts"`
	AverageRiskScore  int            `json:"averageRiskScore"`
	SeverityBreakdown map[string]int `json:"severityBreakdown"`
}

// DailyStats reads the per-day counters the stats consumer maintains in
// Redis. day must be a YYYY-MM-DD date; an empty day means today (UTC).
func (s *Service) DailyStats(ctx context.Context, day string) (*DailyStats, error) {
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatsDate, day)
	}
	if s.redis == nil {
		return nil, fmt.Errorf("stats store is not available")
	}

	values, err := s.redis.GetProctoringDailyStats(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("reading daily stats: %w", err)
	}
	return parseDailyStats(day, values), nil
}

// parseDailyStats decodes the Redis hash written by the stats consumer. A
// missing or empty hash yields a zeroed result for the day.
func parseDailyStats(day string, values map[string]string) *DailyStats {
	stats := &DailyStats{
		Date: day,
		SeverityBreakdown: map[string]int{
			constants.SeverityHigh:   0,
			constants.SeverityMedium: 0,
			constants.SeverityLow:    0,
		},
	}

	stats.SessionsCompleted = intField(values, "sessions_completed")
	stats.TotalAlerts = intField(values, "total_alerts")
	for severity := range stats.SeverityBreakdown {
		stats.SeverityBreakdown[severity] = intField(values, "severity_"+severity)
	}

	if stats.SessionsCompleted > 0 {
		totalRisk := intField(values, "total_risk_score")
		stats.AverageRiskScore = int(math.Round(float64(totalRisk) / float64(stats.SessionsCompleted)))
	}
	return stats
}

func intField(values map[string]string, field string) int {
	n, err := strconv.Atoi(values[field])
	if err != nil {
		return 0
	}
	return n
}
