package report

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no report exists for a batch id.
var ErrNotFound = errors.New("process report not found")

// Store persists process reports.
type Store interface {
	Create(ctx context.Context, r *ProcessReport) error
	Save(ctx context.Context, r *ProcessReport) error
	Get(ctx context.Context, batchID string) (*ProcessReport, error)
	List(ctx context.Context, limit int) ([]ProcessReport, error)
}

// GormStore is a Store backed by gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a gorm backed report store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create inserts a new report.
func (s *GormStore) Create(ctx context.Context, r *ProcessReport) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to create report %s: %w", r.BatchID, err)
	}
	return nil
}

// Save writes every column of an existing report.
func (s *GormStore) Save(ctx context.Context, r *ProcessReport) error {
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return fmt.Errorf("failed to save report %s: %w", r.BatchID, err)
	}
	return nil
}

// Get returns the report of a batch.
func (s *GormStore) Get(ctx context.Context, batchID string) (*ProcessReport, error) {
	var r ProcessReport
	err := s.db.WithContext(ctx).Where("batch_id = ?", batchID).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", batchID, err)
	}
	return &r, nil
}

// List returns the most recent reports first.
func (s *GormStore) List(ctx context.Context, limit int) ([]ProcessReport, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []ProcessReport
	if err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return out, nil
}
