package proctoring

import (
	"context"
	"testing"

	"i-hire-go/internal/config"
	"i-hire-go/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDailyStats(t *testing.T) {
	stats := parseDailyStats("2026-08-31", map[string]string{
		"sessions_completed": "4",
		"total_alerts":       "9",
		"total_risk_score":   "130",
		"severity_high":      "1",
		"severity_medium":    "2",
		"severity_low":       "1",
	})

	assert.Equal(t, "2026-08-31", stats.Date)
	assert.Equal(t, 4, stats.SessionsCompleted)
	assert.Equal(t, 9, stats.TotalAlerts)
	// 130 / 4 rounds to 33.
	assert.Equal(t, 33, stats.AverageRiskScore)
	assert.Equal(t, 1, stats.SeverityBreakdown[constants.SeverityHigh])
	assert.Equal(t, 2, stats.SeverityBreakdown[constants.SeverityMedium])
	assert.Equal(t, 1, stats.SeverityBreakdown[constants.SeverityLow])
}

func TestParseDailyStatsEmptyDay(t *testing.T) {
	stats := parseDailyStats("2026-08-30", map[string]string{})

	assert.Equal(t, 0, stats.SessionsCompleted)
	assert.Equal(t, 0, stats.AverageRiskScore)
	assert.Equal(t, 0, stats.SeverityBreakdown[constants.SeverityHigh])
}

func TestParseDailyStatsIgnoresGarbageFields(t *testing.T) {
	stats := parseDailyStats("2026-08-29", map[string]string{
		"sessions_completed": "not-a-number",
		"total_alerts":       "2",
	})

	assert.Equal(t, 0, stats.SessionsCompleted)
	assert.Equal(t, 2, stats.TotalAlerts)
}

func TestDailyStatsValidatesDate(t *testing.T) {
	s := NewService(nil, nil, &config.Config{})

	_, err := s.DailyStats(context.Background(), "31-08-2026")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStatsDate)
}
