package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"twin-sync/core/catalog"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("record not found")

// upsertColumns are overwritten when a natural key is reconciled again.
var upsertColumns = []string{
	"batch_id", "row_no", "shell_id", "submodel_id", "asset_id",
	"access_policy_id", "usage_policy_id", "contract_definition_id",
	"parent_id", "child_id", "updated", "fields", "policies",
	"deleted_batch_id", "deleted_at", "updated_at",
}

// Store persists records with gorm.
type Store struct {
	db *gorm.DB
}

// NewStore creates a record store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Save inserts rec or overwrites the record with the same kind and natural key.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	rec.DeletedBatchID = ""
	rec.DeletedAt = nil
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "natural_key"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("failed to save %s record %s: %w", rec.Kind, rec.NaturalKey, err)
	}
	return nil
}

// FindByKey returns the record of a natural key, or nil when there is none.
func (s *Store) FindByKey(ctx context.Context, kind, naturalKey string) (*Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("kind = ? AND natural_key = ?", kind, naturalKey).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s record %s: %w", kind, naturalKey, err)
	}
	return &rec, nil
}

// Get returns a record by id or natural key.
func (s *Store) Get(ctx context.Context, kind, id string) (*Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).
		Where("kind = ? AND (id = ? OR natural_key = ?)", kind, id, id).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s record %s: %w", kind, id, err)
	}
	return &rec, nil
}

// FindAsset returns the catalog ids last recorded for an asset.
func (s *Store) FindAsset(ctx context.Context, assetID string) (catalog.AssetRecord, bool, error) {
	var rec Record
	err := s.db.WithContext(ctx).
		Where("asset_id = ? AND deleted_at IS NULL", assetID).
		Order("updated_at DESC").
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return catalog.AssetRecord{}, false, nil
	}
	if err != nil {
		return catalog.AssetRecord{}, false, fmt.Errorf("failed to find asset %s: %w", assetID, err)
	}
	return rec.AssetRecord(), true, nil
}

// CountUpdated counts the records of a batch that took the update path.
func (s *Store) CountUpdated(ctx context.Context, kind, batchID string) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Record{}).
		Where("kind = ? AND batch_id = ? AND updated = ?", kind, batchID, true).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count updated %s records of batch %s: %w", kind, batchID, err)
	}
	return int(n), nil
}

// ListByBatch returns the live records a batch created, in row order.
func (s *Store) ListByBatch(ctx context.Context, kind, batchID string) ([]Record, error) {
	var out []Record
	err := s.db.WithContext(ctx).
		Where("kind = ? AND batch_id = ? AND deleted_at IS NULL", kind, batchID).
		Order("row_no").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records of batch %s: %w", kind, batchID, err)
	}
	return out, nil
}

// MarkDeleted flags a record as removed by a delete batch.
func (s *Store) MarkDeleted(ctx context.Context, id, deleteBatchID string) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&Record{}).Where("id = ?", id).Updates(map[string]any{
		"deleted_batch_id": deleteBatchID,
		"deleted_at":       &now,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to mark record %s deleted: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
