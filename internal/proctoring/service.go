package proctoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"i-hire-go/internal/config"
	"i-hire-go/internal/constants"
	"i-hire-go/internal/logger"
	"i-hire-go/internal/storage"
	"i-hire-go/internal/storage/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSessionNotFound is returned when no session exists for the requested
// (sessionId, mockId) pair.
var ErrSessionNotFound = storage.ErrSessionNotFound

// Service owns the proctoring session lifecycle. All read-modify-write
// aggregation runs inside a transaction holding a row lock, so concurrent
// detection ticks for one session serialize instead of racing.
type Service struct {
	pg    *storage.Postgres
	redis *storage.Redis
	cfg   *config.Config
}

// NewService creates the proctoring service. redis backs the daily stats
// endpoint and may be nil.
func NewService(pg *storage.Postgres, redis *storage.Redis, cfg *config.Config) *Service {
	return &Service{pg: pg, redis: redis, cfg: cfg}
}

// StartResult reports a started (or restarted) session.
type StartResult struct {
	SessionID        string    `json:"sessionId"`
	MockID           string    `json:"mockId"`
	SessionStartTime time.Time `json:"sessionStartTime"`
	Restarted        bool      `json:"restarted"`
}

// StartSession creates a fresh session aggregate, or resets an existing one
// for the same (sessionId, mockId) back to its initial state.
func (s *Service) StartSession(ctx context.Context, sessionID, mockID, userEmail string, detectionSettings json.RawMessage) (*StartResult, error) {
	now := time.Now().UTC()

	var settings datatypes.JSON
	if len(detectionSettings) > 0 {
		settings = datatypes.JSON(detectionSettings)
	}

	session := &models.ProctoringSession{
		SessionID:         sessionID,
		MockID:            mockID,
		UserEmail:         userEmail,
		Status:            constants.SessionStatusActive,
		StartedAt:         now,
		SeverityLevel:     constants.SeverityLow,
		DetectionHistory:  datatypes.JSON("[]"),
		Alerts:            datatypes.JSON("[]"),
		DetectionSettings: settings,
	}

	var restarted bool
	err := s.pg.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.ProctoringSession{}).
			Where("session_id = ? AND mock_id = ?", sessionID, mockID).
			Count(&existing).Error; err != nil {
			return err
		}
		restarted = existing > 0

		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}, {Name: "mock_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"user_email":         userEmail,
				"status":             constants.SessionStatusActive,
				"started_at":         now,
				"ended_at":           nil,
				"duration_seconds":   0,
				"risk_score":         0,
				"alerts_count":       0,
				"detection_count":    0,
				"severity_level":     constants.SeverityLow,
				"violations":         nil,
				"devices":            nil,
				"movement_patterns":  nil,
				"detection_history":  datatypes.JSON("[]"),
				"alerts":             datatypes.JSON("[]"),
				"enhanced_metrics":   nil,
				"latest_detection":   nil,
				"final_analytics":    nil,
				"detection_settings": settings,
				"updated_at":         now,
			}),
		}).Create(session)
		if res.Error != nil {
			return res.Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}

	logger.Info().
		Str("session_id", sessionID).
		Str("mock_id", mockID).
		Bool("restarted", restarted).
		Msg("proctoring session started")

	return &StartResult{
		SessionID:        sessionID,
		MockID:           mockID,
		SessionStartTime: now,
		Restarted:        restarted,
	}, nil
}

// UpdateSession folds one detection tick into the session aggregate and
// persists the result in a single update.
func (s *Service) UpdateSession(ctx context.Context, update *DetectionUpdate) (*UpdateResult, error) {
	now := time.Now().UTC()
	var result *UpdateResult

	err := s.pg.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.pg.GetSessionForUpdate(tx, update.SessionID, update.MockID)
		if err != nil {
			return err
		}

		state := decodeState(session)
		state.apply(update, now)

		duration := elapsedSeconds(session.StartedAt, now)
		riskScore := state.riskScore()
		severity := severityLevel(riskScore, len(state.Alerts))

		violationsJSON, err := models.ToJSON(state.Violations)
		if err != nil {
			return fmt.Errorf("encoding violations: %w", err)
		}
		devicesJSON, err := models.ToJSON(state.Devices)
		if err != nil {
			return fmt.Errorf("encoding devices: %w", err)
		}
		patternsJSON, err := models.ToJSON(state.MovementPatterns)
		if err != nil {
			return fmt.Errorf("encoding movement patterns: %w", err)
		}
		historyJSON, err := models.ToJSON(state.History)
		if err != nil {
			return fmt.Errorf("encoding detection history: %w", err)
		}
		alertsJSON, err := models.ToJSON(state.Alerts)
		if err != nil {
			return fmt.Errorf("encoding alerts: %w", err)
		}

		updates := map[string]interface{}{
			"duration_seconds":  duration,
			"risk_score":        riskScore,
			"alerts_count":      len(state.Alerts),
			"detection_count":   len(state.History),
			"severity_level":    severity,
			"violations":        violationsJSON,
			"devices":           devicesJSON,
			"movement_patterns": patternsJSON,
			"detection_history": historyJSON,
			"alerts":            alertsJSON,
			"updated_at":        now,
		}
		if len(update.DetectionData) > 0 {
			updates["latest_detection"] = datatypes.JSON(update.DetectionData)
		}
		if update.EnhancedMetrics != nil {
			metricsJSON, err := models.ToJSON(update.EnhancedMetrics)
			if err != nil {
				return fmt.Errorf("encoding enhanced metrics: %w", err)
			}
			updates["enhanced_metrics"] = metricsJSON
		}

		if err := tx.Model(&models.ProctoringSession{}).
			Where("id = ?", session.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("persisting session update: %w", err)
		}

		result = &UpdateResult{
			SessionID:            update.SessionID,
			MockID:               update.MockID,
			SessionRiskScore:     riskScore,
			SessionSeverityLevel: severity,
			SessionDuration:      duration,
			AlertCount:           len(state.Alerts),
			DetectionCount:       len(state.History),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EndSession closes a session, computes its final analytics, and writes a
// completion event to the outbox in the same transaction.
func (s *Service) EndSession(ctx context.Context, sessionID, mockID string, finalDetectionData json.RawMessage) (*EndResult, error) {
	now := time.Now().UTC()
	var result *EndResult

	err := s.pg.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := s.pg.GetSessionForUpdate(tx, sessionID, mockID)
		if err != nil {
			return err
		}

		state := decodeState(session)
		duration := elapsedSeconds(session.StartedAt, now)
		analytics := state.analytics(duration)
		severity := finalSeverityLevel(analytics.AverageRisk, analytics.TotalAlerts, analytics.TotalViolations)

		analyticsJSON, err := models.ToJSON(analytics)
		if err != nil {
			return fmt.Errorf("encoding analytics: %w", err)
		}

		updates := map[string]interface{}{
			"status":           constants.SessionStatusCompleted,
			"ended_at":         now,
			"duration_seconds": duration,
			"risk_score":       analytics.AverageRisk,
			"alerts_count":     analytics.TotalAlerts,
			"severity_level":   severity,
			"final_analytics":  analyticsJSON,
			"updated_at":       now,
		}
		if len(finalDetectionData) > 0 {
			updates["latest_detection"] = datatypes.JSON(finalDetectionData)
		}

		if err := tx.Model(&models.ProctoringSession{}).
			Where("id = ?", session.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("persisting session end: %w", err)
		}

		message := storage.SessionCompletedMessage{
			SessionID:       sessionID,
			MockID:          mockID,
			UserEmail:       session.UserEmail,
			EndedAt:         now,
			DurationSeconds: duration,
			RiskScore:       analytics.AverageRisk,
			AlertsCount:     analytics.TotalAlerts,
			DetectionCount:  analytics.TotalDetections,
			SeverityLevel:   severity,
		}
		payload, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("encoding completion message: %w", err)
		}

		outboxRow := models.OutboxMessage{
			AggregateID:      sessionID,
			EventType:        "proctoring.session.completed",
			Payload:          string(payload),
			TargetExchange:   s.cfg.RabbitMQ.ProctoringExchange,
			TargetRoutingKey: s.cfg.RabbitMQ.SessionCompletedRouting,
			Status:           "PENDING",
		}
		if err := tx.Create(&outboxRow).Error; err != nil {
			return fmt.Errorf("writing outbox row: %w", err)
		}

		result = &EndResult{
			SessionID:          sessionID,
			MockID:             mockID,
			UserEmail:          session.UserEmail,
			SessionStartTime:   session.StartedAt,
			SessionEndTime:     now,
			SessionDuration:    duration,
			FinalRiskScore:     analytics.AverageRisk,
			FinalSeverityLevel: severity,
			Analytics:          analytics,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("session_id", sessionID).
		Str("mock_id", mockID).
		Str("severity", result.FinalSeverityLevel).
		Int("risk_score", result.FinalRiskScore).
		Msg("proctoring session ended")

	return result, nil
}

// GetSessions returns the decoded session aggregates for a mock interview,
// optionally narrowed to one sessionId, plus summary statistics.
func (s *Service) GetSessions(ctx context.Context, mockID, sessionID string) (*SessionsResult, error) {
	sessions, err := s.pg.FindSessionsByMockID(ctx, mockID)
	if err != nil {
		return nil, err
	}

	views := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		if sessionID != "" && sessions[i].SessionID != sessionID {
			continue
		}
		views = append(views, toSessionView(&sessions[i]))
	}

	result := &SessionsResult{
		Sessions:   views,
		TotalCount: len(views),
	}
	if len(views) > 0 {
		result.SummaryStats = summarize(views)
	}
	return result, nil
}

func toSessionView(session *models.ProctoringSession) SessionView {
	state := decodeState(session)

	return SessionView{
		ID:                session.ID,
		SessionID:         session.SessionID,
		MockID:            session.MockID,
		UserEmail:         session.UserEmail,
		Status:            session.Status,
		StartedAt:         session.StartedAt,
		EndedAt:           session.EndedAt,
		Duration:          session.DurationSeconds,
		RiskScore:         session.RiskScore,
		AlertsCount:       session.AlertsCount,
		SeverityLevel:     session.SeverityLevel,
		Violations:        state.Violations,
		Devices:           state.Devices,
		MovementPatterns:  state.MovementPatterns,
		DetectionHistory:  state.History,
		Alerts:            state.Alerts,
		EnhancedMetrics:   json.RawMessage(session.EnhancedMetrics),
		DetectionSettings: json.RawMessage(session.DetectionSettings),
		FinalAnalytics:    json.RawMessage(session.FinalAnalytics),
		CreatedAt:         session.CreatedAt,
		UpdatedAt:         session.UpdatedAt,
	}
}

func summarize(views []SessionView) *SummaryStats {
	stats := &SummaryStats{
		TotalSessions: len(views),
		SeverityBreakdown: map[string]int{
			constants.SeverityHigh:   0,
			constants.SeverityMedium: 0,
			constants.SeverityLow:    0,
		},
	}

	var riskSum float64
	for _, v := range views {
		if v.EndedAt != nil {
			stats.CompletedSessions++
		} else {
			stats.ActiveSessions++
		}
		riskSum += float64(v.RiskScore)
		stats.TotalAlerts += v.AlertsCount
		stats.SeverityBreakdown[v.SeverityLevel]++
	}
	stats.AverageRiskScore = int(math.Round(riskSum / float64(len(views))))

	return stats
}
