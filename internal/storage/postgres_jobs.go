package storage

import (
	"context"
	"fmt"

	"i-hire-go/internal/storage/models"
)

// CreateJobPosting persists a new job posting.
func (p *Postgres) CreateJobPosting(ctx context.Context, job *models.JobPosting) error {
	if err := p.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("creating job posting: %w", err)
	}
	return nil
}

// ListJobPostings lists postings filtered by status; an empty status lists
// everything.
func (p *Postgres) ListJobPostings(ctx context.Context, status string) ([]models.JobPosting, error) {
	var jobs []models.JobPosting
	query := p.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("listing job postings: %w", err)
	}
	return jobs, nil
}
