package storage

import (
	"context"
	"errors"
	"fmt"

	"i-hire-go/internal/storage/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// ErrInterviewNotFound is returned when a mock interview does not exist.
var ErrInterviewNotFound = errors.New("mock interview not found")

// CreateMockInterview persists a new mock interview.
func (p *Postgres) CreateMockInterview(ctx context.Context, interview *models.MockInterview) error {
	if err := p.db.WithContext(ctx).Create(interview).Error; err != nil {
		return fmt.Errorf("creating mock interview: %w", err)
	}
	return nil
}

// GetMockInterview fetches one interview by ID, hidden or not.
func (p *Postgres) GetMockInterview(ctx context.Context, mockID string) (*models.MockInterview, error) {
	var interview models.MockInterview
	err := p.db.WithContext(ctx).Where("mock_id = ?", mockID).First(&interview).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInterviewNotFound
		}
		return nil, fmt.Errorf("loading mock interview: %w", err)
	}
	return &interview, nil
}

// FindMockInterviewsByUser lists a user's visible interviews, newest first.
func (p *Postgres) FindMockInterviewsByUser(ctx context.Context, createdBy string) ([]models.MockInterview, error) {
	ctx, span := pgTracer.Start(ctx, "Postgres.FindMockInterviewsByUser", trace.WithAttributes(
		attribute.String("user.id", createdBy),
	))
	defer span.End()

	var interviews []models.MockInterview
	err := p.db.WithContext(ctx).
		Where("created_by = ? AND is_hidden = ?", createdBy, false).
		Order("created_at DESC").
		Find(&interviews).Error
	if err != nil {
		return nil, fmt.Errorf("listing mock interviews: %w", err)
	}
	return interviews, nil
}

// SetMockInterviewHidden flags an interview hidden without deleting its data.
func (p *Postgres) SetMockInterviewHidden(ctx context.Context, mockID string, hidden bool) error {
	result := p.db.WithContext(ctx).
		Model(&models.MockInterview{}).
		Where("mock_id = ?", mockID).
		Update("is_hidden", hidden)
	if result.Error != nil {
		return fmt.Errorf("updating mock interview visibility: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInterviewNotFound
	}
	return nil
}

// DeleteMockInterview removes an interview and all dependent rows in one
// transaction. Answers and proctoring sessions go first so the delete also
// works without cascading foreign keys.
func (p *Postgres) DeleteMockInterview(ctx context.Context, mockID string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var interview models.MockInterview
		if err := tx.Where("mock_id = ?", mockID).First(&interview).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInterviewNotFound
			}
			return fmt.Errorf("loading mock interview: %w", err)
		}

		if err := tx.Where("mock_id = ?", mockID).Delete(&models.UserAnswer{}).Error; err != nil {
			return fmt.Errorf("deleting answers: %w", err)
		}
		if err := tx.Where("mock_id = ?", mockID).Delete(&models.ProctoringSession{}).Error; err != nil {
			return fmt.Errorf("deleting proctoring sessions: %w", err)
		}
		if err := tx.Delete(&interview).Error; err != nil {
			return fmt.Errorf("deleting mock interview: %w", err)
		}
		return nil
	})
}

// SaveUserAnswer persists one answered question with its evaluation.
func (p *Postgres) SaveUserAnswer(ctx context.Context, answer *models.UserAnswer) error {
	if err := p.db.WithContext(ctx).Create(answer).Error; err != nil {
		return fmt.Errorf("saving user answer: %w", err)
	}
	return nil
}

// FindAnswersByMockID lists a user's answers for one interview in the order
// they were given.
func (p *Postgres) FindAnswersByMockID(ctx context.Context, mockID, userEmail string) ([]models.UserAnswer, error) {
	var answers []models.UserAnswer
	query := p.db.WithContext(ctx).Where("mock_id = ?", mockID)
	if userEmail != "" {
		query = query.Where("user_email = ?", userEmail)
	}
	if err := query.Order("created_at ASC").Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("listing user answers: %w", err)
	}
	return answers, nil
}
