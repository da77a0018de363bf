package record

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"twin-sync/core/catalog"
	"twin-sync/core/policy"
	"twin-sync/core/reconcile"
)

// Record is the stored outcome of one reconciled row.
type Record struct {
	ID         string `gorm:"primaryKey;size:64" json:"id"`
	Kind       string `gorm:"size:64;not null;uniqueIndex:idx_twin_records_kind_key" json:"kind"`
	NaturalKey string `gorm:"size:255;not null;uniqueIndex:idx_twin_records_kind_key" json:"natural_key"`
	BatchID    string `gorm:"size:64;index" json:"batch_id"`
	RowNumber  int    `gorm:"column:row_no" json:"row_number"`

	ShellID              string `gorm:"size:255" json:"shell_id"`
	SubmodelID           string `gorm:"size:255" json:"submodel_id"`
	AssetID              string `gorm:"size:512;index" json:"asset_id"`
	AccessPolicyID       string `gorm:"size:64" json:"access_policy_id"`
	UsagePolicyID        string `gorm:"size:64" json:"usage_policy_id"`
	ContractDefinitionID string `gorm:"size:600" json:"contract_definition_id"`

	ParentID string `gorm:"size:255" json:"parent_id,omitempty"`
	ChildID  string `gorm:"size:255" json:"child_id,omitempty"`
	Updated  bool   `json:"updated"`

	Fields   datatypes.JSONMap `json:"fields"`
	Policies datatypes.JSON    `json:"policies"`

	DeletedBatchID string     `gorm:"size:64" json:"deleted_batch_id,omitempty"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName overrides the default table name.
func (Record) TableName() string {
	return "twin_records"
}

// BeforeCreate assigns an id to new records.
func (r *Record) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// AssetRecord returns the catalog ids held by the record.
func (r Record) AssetRecord() catalog.AssetRecord {
	return catalog.AssetRecord{
		AssetID:              r.AssetID,
		AccessPolicyID:       r.AccessPolicyID,
		UsagePolicyID:        r.UsagePolicyID,
		ContractDefinitionID: r.ContractDefinitionID,
	}
}

// UsagePolicies decodes the stored effective policy set.
func (r Record) UsagePolicies() ([]policy.UsagePolicy, error) {
	if len(r.Policies) == 0 {
		return nil, nil
	}
	var out []policy.UsagePolicy
	if err := json.Unmarshal(r.Policies, &out); err != nil {
		return nil, fmt.Errorf("failed to decode policies of record %s: %w", r.ID, err)
	}
	return out, nil
}

// FromRow builds the record of a reconciled row.
func FromRow(kind, naturalKey string, row *reconcile.Row) (*Record, error) {
	policies, err := json.Marshal(row.Policies)
	if err != nil {
		return nil, fmt.Errorf("failed to encode policies: %w", err)
	}

	fields := datatypes.JSONMap{}
	for k, v := range row.Values {
		fields[k] = v
	}

	return &Record{
		Kind:                 kind,
		NaturalKey:           naturalKey,
		BatchID:              row.BatchID,
		RowNumber:            row.Number,
		ShellID:              row.ShellID,
		SubmodelID:           row.SubmodelID,
		AssetID:              row.AssetID,
		AccessPolicyID:       row.AccessPolicyID,
		UsagePolicyID:        row.UsagePolicyID,
		ContractDefinitionID: row.ContractDefinitionID,
		ParentID:             row.ParentID,
		ChildID:              row.ChildID,
		Updated:              row.Updated,
		Fields:               fields,
		Policies:             datatypes.JSON(policies),
	}, nil
}
