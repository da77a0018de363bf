package failurelog

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Entry is one logged row failure.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BatchID   string    `gorm:"size:64;index" json:"batch_id"`
	RowNumber int       `gorm:"column:row_no" json:"row_number"`
	Stage     string    `gorm:"size:32" json:"stage"`
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the default table name.
func (Entry) TableName() string {
	return "failure_logs"
}

// Sink records row failures.
type Sink interface {
	Record(ctx context.Context, batchID string, rowNumber int, stage, message string) error
	List(ctx context.Context, batchID string) ([]Entry, error)
}

// GormSink is a Sink backed by gorm.
type GormSink struct {
	db *gorm.DB
}

// NewGormSink creates a gorm backed failure log.
func NewGormSink(db *gorm.DB) *GormSink {
	return &GormSink{db: db}
}

// Record stores one failure.
func (s *GormSink) Record(ctx context.Context, batchID string, rowNumber int, stage, message string) error {
	e := &Entry{BatchID: batchID, RowNumber: rowNumber, Stage: stage, Message: message}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to record failure of row %d in batch %s: %w", rowNumber, batchID, err)
	}
	return nil
}

// List returns the failures of a batch in row order.
func (s *GormSink) List(ctx context.Context, batchID string) ([]Entry, error) {
	var out []Entry
	if err := s.db.WithContext(ctx).Where("batch_id = ?", batchID).Order("row_no, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list failures of batch %s: %w", batchID, err)
	}
	return out, nil
}
