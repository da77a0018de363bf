package report

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Status is the lifecycle state of a process report.
type Status string

const (
	StatusStarted  Status = "STARTED"
	StatusRunning  Status = "RUNNING"
	StatusFinished Status = "FINISHED"
	StatusFailed   Status = "FAILED"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusFailed
}

// ProcessReport is the aggregated outcome of one batch.
type ProcessReport struct {
	BatchID          string         `gorm:"primaryKey;size:64" json:"batch_id"`
	Kind             string         `gorm:"size:64;index" json:"kind"`
	Total            int            `json:"total"`
	Success          int            `json:"success"`
	Failure          int            `json:"failure"`
	Updated          int            `json:"updated"`
	Deleted          int            `json:"deleted"`
	Status           Status         `gorm:"size:16;index" json:"status"`
	StartedAt        time.Time      `json:"started_at"`
	EndedAt          *time.Time     `json:"ended_at,omitempty"`
	Metadata         datatypes.JSON `json:"metadata"`
	ReferenceBatchID string         `gorm:"size:64;index" json:"reference_batch_id,omitempty"`
	Error            string         `gorm:"type:text" json:"error,omitempty"`
}

// TableName overrides the default table name.
func (ProcessReport) TableName() string {
	return "process_reports"
}

// IsDelete reports whether the report belongs to a delete batch.
func (r ProcessReport) IsDelete() bool {
	return r.ReferenceBatchID != ""
}

// Meta decodes the metadata snapshot.
func (r ProcessReport) Meta() (Metadata, error) {
	var m Metadata
	if len(r.Metadata) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(r.Metadata, &m); err != nil {
		return m, fmt.Errorf("failed to decode metadata of batch %s: %w", r.BatchID, err)
	}
	return m, nil
}

func encodeMeta(m Metadata) (datatypes.JSON, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return datatypes.JSON(b), nil
}
