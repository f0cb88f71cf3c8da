package proctoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i-hire-go/internal/constants"
	"i-hire-go/internal/storage/models"

	"gorm.io/datatypes"
)

func newEmptyState() *sessionState {
	return decodeState(&models.ProctoringSession{})
}

func TestDetectionHistoryCappedFIFO(t *testing.T) {
	state := newEmptyState()
	now := time.Now().UTC()

	for i := 0; i < 150; i++ {
		state.apply(&DetectionUpdate{
			RiskScore:     float64(i),
			DetectionData: []byte(fmt.Sprintf(`{"tick":%d}`, i)),
		}, now.Add(time.Duration(i)*time.Second))
	}

	require.Len(t, state.History, constants.DetectionHistoryLimit)
	// Oldest entries are dropped first: entries 50..149 remain in order.
	assert.Equal(t, 50.0, state.History[0].RiskScore)
	assert.Equal(t, 149.0, state.History[len(state.History)-1].RiskScore)
}

func TestDetectionHistoryLengthTracksUpdates(t *testing.T) {
	state := newEmptyState()
	now := time.Now().UTC()

	for i := 0; i < 7; i++ {
		state.apply(&DetectionUpdate{RiskScore: 10}, now)
	}
	assert.Len(t, state.History, 7)
}

func TestRiskScoreExcludesZeroEntries(t *testing.T) {
	state := newEmptyState()
	now := time.Now().UTC()

	state.apply(&DetectionUpdate{RiskScore: 0}, now)
	state.apply(&DetectionUpdate{RiskScore: 60}, now)
	state.apply(&DetectionUpdate{RiskScore: 0}, now)
	state.apply(&DetectionUpdate{RiskScore: 30}, now)

	// Mean over positive scores only: (60+30)/2.
	assert.Equal(t, 45, state.riskScore())
}

func TestRiskScoreAllZero(t *testing.T) {
	state := newEmptyState()
	state.apply(&DetectionUpdate{RiskScore: 0}, time.Now())
	assert.Equal(t, 0, state.riskScore())
}

func TestSeverityClassificationBoundaries(t *testing.T) {
	cases := []struct {
		riskScore  int
		alertCount int
		want       string
	}{
		{70, 0, constants.SeverityHigh},
		{0, 10, constants.SeverityHigh},
		{69, 9, constants.SeverityMedium},
		{40, 0, constants.SeverityMedium},
		{0, 5, constants.SeverityMedium},
		{39, 4, constants.SeverityLow},
		{0, 0, constants.SeverityLow},
	}

	for _, tc := range cases {
		got := severityLevel(tc.riskScore, tc.alertCount)
		assert.Equal(t, tc.want, got, "riskScore=%d alertCount=%d", tc.riskScore, tc.alertCount)
	}
}

func TestFinalSeverityConsidersViolations(t *testing.T) {
	assert.Equal(t, constants.SeverityHigh, finalSeverityLevel(0, 0, 15))
	assert.Equal(t, constants.SeverityMedium, finalSeverityLevel(0, 0, 8))
	assert.Equal(t, constants.SeverityLow, finalSeverityLevel(0, 0, 7))
}

func TestViolationCountsAccumulate(t *testing.T) {
	state := newEmptyState()
	now := time.Now().UTC()

	update := &DetectionUpdate{
		RiskScore: 20,
		Alerts:    []Alert{{Type: "phoneDetection", Severity: "high"}},
	}
	state.apply(update, now)
	state.apply(update, now)

	assert.Equal(t, 2, state.Violations["phoneDetection"])
	assert.Len(t, state.Alerts, 2)
}

func TestAlertWithoutTypeCountsAsUnknown(t *testing.T) {
	state := newEmptyState()
	state.apply(&DetectionUpdate{Alerts: []Alert{{Message: "untyped"}}}, time.Now())
	assert.Equal(t, 1, state.Violations["unknown"])
}

func TestDeviceAndMovementCounters(t *testing.T) {
	state := newEmptyState()
	now := time.Now().UTC()

	state.apply(&DetectionUpdate{
		EnhancedMetrics: &EnhancedMetrics{DeviceType: "phone", MovementPattern: "looking_away"},
	}, now)
	state.apply(&DetectionUpdate{
		EnhancedMetrics: &EnhancedMetrics{DeviceType: "phone"},
	}, now)

	assert.Equal(t, 2, state.Devices["phone"])
	assert.Equal(t, 1, state.MovementPatterns["looking_away"])
}

func TestDecodeStateToleratesCorruptColumns(t *testing.T) {
	session := &models.ProctoringSession{
		Violations:       datatypes.JSON(`{"broken`),
		DetectionHistory: datatypes.JSON(`not json`),
		Alerts:           datatypes.JSON(`[{"type":"tabSwitch"}]`),
	}

	state := decodeState(session)
	require.NotNil(t, state)
	assert.Empty(t, state.Violations)
	assert.Empty(t, state.History)
	require.Len(t, state.Alerts, 1)
	assert.Equal(t, "tabSwitch", state.Alerts[0].Type)
}

func TestAnalyticsRollup(t *testing.T) {
	state := newEmptyState()
	now := time.Now().UTC()

	state.apply(&DetectionUpdate{
		RiskScore: 80,
		Alerts:    []Alert{{Type: "phoneDetection"}, {Type: "phoneDetection"}, {Type: "tabSwitch"}},
	}, now)
	state.apply(&DetectionUpdate{RiskScore: 40}, now)

	analytics := state.analytics(125)
	assert.Equal(t, 60, analytics.AverageRisk)
	assert.Equal(t, 80, analytics.PeakRisk)
	assert.Equal(t, 3, analytics.TotalViolations)
	assert.Equal(t, "phoneDetection", analytics.MostCommonViolation)
	assert.Equal(t, int64(125), analytics.SessionDuration)
	assert.Equal(t, 2, analytics.TotalDetections)
	assert.Equal(t, 3, analytics.TotalAlerts)
}

func TestMostCommonViolationEmpty(t *testing.T) {
	assert.Equal(t, "none", mostCommonViolation(Counters{}))
}

func TestElapsedSecondsFloors(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := start.Add(90*time.Second + 900*time.Millisecond)
	assert.Equal(t, int64(90), elapsedSeconds(start, now))
	assert.Equal(t, int64(0), elapsedSeconds(time.Time{}, now))
}
