package kind

import (
	"context"
	"encoding/json"

	"twin-sync/core/reconcile"
	"twin-sync/core/record"
)

// Executor runs the reconciliation workflow of one data kind.
type Executor interface {
	// Init binds the field schema. It is called once per batch.
	Init(schema Schema) error

	// ExecuteRow reconciles one row and returns it with the created ids
	// attached. Failures are *reconcile.RowError.
	ExecuteRow(ctx context.Context, row *reconcile.Row, batchID string) (*reconcile.Row, error)

	// CountUpdatedRows returns how many rows of batchID took the update path.
	CountUpdatedRows(ctx context.Context, batchID string) (int, error)

	// ReadRecordsForDelete returns the live records created by refBatchID.
	ReadRecordsForDelete(ctx context.Context, refBatchID string) ([]record.Record, error)

	// DeleteRecord removes the remote resources of rec. Resources that are
	// already gone count as deleted.
	DeleteRecord(ctx context.Context, rec record.Record, deleteBatchID, refBatchID string) error

	// ReadRecord returns a created record by id or natural key.
	ReadRecord(ctx context.Context, id string) (*record.Record, error)
}

// Kind pairs a schema with its executor.
type Kind struct {
	Schema   Schema
	Executor Executor
}

// Name returns the kind identifier.
func (k Kind) Name() string {
	return k.Schema.Name
}

// View returns rec restricted to the kind's declared fields plus its ids.
// Stored numbers come back as json.Number and are returned as float64.
func (k Kind) View(rec *record.Record) map[string]any {
	fields := make(map[string]any, len(k.Schema.Fields))
	for _, f := range k.Schema.Fields {
		v := rec.Fields[f.Name]
		if n, ok := v.(json.Number); ok && f.Type == Number {
			if parsed, err := n.Float64(); err == nil {
				v = parsed
			}
		}
		fields[f.Name] = v
	}
	return map[string]any{
		"id":                     rec.ID,
		"kind":                   k.Name(),
		"batch_id":               rec.BatchID,
		"row_number":             rec.RowNumber,
		"shell_id":               rec.ShellID,
		"submodel_id":            rec.SubmodelID,
		"asset_id":               rec.AssetID,
		"access_policy_id":       rec.AccessPolicyID,
		"usage_policy_id":        rec.UsagePolicyID,
		"contract_definition_id": rec.ContractDefinitionID,
		"updated":                rec.Updated,
		"deleted":                rec.DeletedAt != nil,
		"fields":                 fields,
	}
}
