package kind

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"twin-sync/core/catalog"
	"twin-sync/core/reconcile"
	"twin-sync/core/record"
	"twin-sync/core/twin"
)

// Records is the record storage used by executors.
type Records interface {
	Save(ctx context.Context, rec *record.Record) error
	FindByKey(ctx context.Context, kind, naturalKey string) (*record.Record, error)
	Get(ctx context.Context, kind, id string) (*record.Record, error)
	CountUpdated(ctx context.Context, kind, batchID string) (int, error)
	ListByBatch(ctx context.Context, kind, batchID string) ([]record.Record, error)
	MarkDeleted(ctx context.Context, id, deleteBatchID string) error
}

// Deps are the collaborators shared by every executor.
type Deps struct {
	Records  Records
	Registry twin.Client
	Catalog  catalog.Client
	Twins    *reconcile.TwinStep
	Assets   *reconcile.AssetStep
	Logger   *zap.Logger
}

// Plan is what a kind derives from one coerced row.
type Plan struct {
	// NaturalKey identifies the row's record across batches.
	NaturalKey string

	// Identity selects the twin. With LookupOnly the twin must already exist.
	Identity   reconcile.Identity
	LookupOnly bool

	Submodel reconcile.SubmodelSpec
	Asset    reconcile.AssetSpec

	// TrackPrior links the submodel recorded for NaturalKey by an earlier
	// batch so its asset is dropped when the submodel changed.
	TrackPrior bool
}

// Base implements the record-backed half of Executor. Kinds embed it and
// provide ExecuteRow.
type Base struct {
	Deps
	kind string

	mu     sync.RWMutex
	coerce Coercer
}

// NewBase creates the shared executor state for a kind.
func NewBase(kindName string, deps Deps) *Base {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Base{Deps: deps, kind: kindName}
}

// Init compiles the schema coercers.
func (b *Base) Init(schema Schema) error {
	coerce, err := schema.Compile()
	if err != nil {
		return fmt.Errorf("failed to init %s: %w", b.kind, err)
	}
	b.mu.Lock()
	b.coerce = coerce
	b.mu.Unlock()
	return nil
}

// Prepare binds the row to batchID and fills row.Values from row.Fields.
func (b *Base) Prepare(row *reconcile.Row, batchID string) error {
	row.BatchID = batchID

	b.mu.RLock()
	coerce := b.coerce
	b.mu.RUnlock()
	if coerce == nil {
		return reconcile.Wrap(row.Number, reconcile.StageValidate, fmt.Errorf("%s executor is not initialized", b.kind))
	}
	values, err := coerce(row.Fields)
	if err != nil {
		return reconcile.Wrap(row.Number, reconcile.StageValidate, err)
	}
	row.Values = values
	return nil
}

// Reconcile runs the twin step, the asset step and persists the record.
func (b *Base) Reconcile(ctx context.Context, row *reconcile.Row, plan Plan) (*reconcile.Row, error) {
	var err error
	if plan.LookupOnly {
		err = b.Twins.ResolveExisting(ctx, row, plan.Identity, plan.Submodel)
	} else {
		err = b.Twins.Resolve(ctx, row, plan.Identity, plan.Submodel)
	}
	if err != nil {
		return nil, reconcile.Wrap(row.Number, reconcile.StageTwin, err)
	}

	if plan.TrackPrior {
		prior, err := b.Records.FindByKey(ctx, b.kind, plan.NaturalKey)
		if err != nil {
			return nil, reconcile.Wrap(row.Number, reconcile.StagePersist, err)
		}
		if prior != nil && prior.SubmodelID != "" && prior.SubmodelID != row.SubmodelID {
			row.OldSubmodelID = prior.SubmodelID
			row.OldAssetID = prior.AssetID
		}
	}

	// The record is saved under the asset lock. Otherwise a concurrent row
	// replacing the same asset would read ids that are already withdrawn.
	var persistErr error
	err = b.Assets.Publish(ctx, row, plan.Asset, func(ctx context.Context, row *reconcile.Row) error {
		persistErr = b.save(ctx, row, plan.NaturalKey)
		return persistErr
	})
	if persistErr != nil {
		return nil, reconcile.Wrap(row.Number, reconcile.StagePersist, persistErr)
	}
	if err != nil {
		return nil, reconcile.Wrap(row.Number, reconcile.StageAsset, err)
	}
	return row, nil
}

func (b *Base) save(ctx context.Context, row *reconcile.Row, naturalKey string) error {
	rec, err := record.FromRow(b.kind, naturalKey, row)
	if err != nil {
		return err
	}
	return b.Records.Save(ctx, rec)
}

// CountUpdatedRows counts the batch records that took the update path.
func (b *Base) CountUpdatedRows(ctx context.Context, batchID string) (int, error) {
	return b.Records.CountUpdated(ctx, b.kind, batchID)
}

// ReadRecordsForDelete lists the live records of a batch.
func (b *Base) ReadRecordsForDelete(ctx context.Context, refBatchID string) ([]record.Record, error) {
	return b.Records.ListByBatch(ctx, b.kind, refBatchID)
}

// ReadRecord returns a record by id or natural key.
func (b *Base) ReadRecord(ctx context.Context, id string) (*record.Record, error) {
	return b.Records.Get(ctx, b.kind, id)
}

// DeleteRecord withdraws the catalog asset, removes the submodel descriptor
// and marks the record deleted. Remote 404s count as success.
func (b *Base) DeleteRecord(ctx context.Context, rec record.Record, deleteBatchID, refBatchID string) error {
	if rec.BatchID != refBatchID {
		return reconcile.Wrap(rec.RowNumber, reconcile.StageDelete,
			fmt.Errorf("record %s belongs to batch %s, not %s", rec.ID, rec.BatchID, refBatchID))
	}

	if rec.AssetID != "" {
		if err := catalog.Withdraw(ctx, b.Catalog, rec.AssetRecord()); err != nil {
			return reconcile.Wrap(rec.RowNumber, reconcile.StageDelete, &reconcile.ServiceError{Op: "delete asset", Err: err})
		}
	}

	if rec.ShellID != "" && rec.SubmodelID != "" {
		err := b.Registry.DeleteSubmodel(ctx, rec.ShellID, rec.SubmodelID)
		if err != nil && !errors.Is(err, twin.ErrNotFound) {
			return reconcile.Wrap(rec.RowNumber, reconcile.StageDelete, &reconcile.ServiceError{Op: "delete submodel", Err: err})
		}
	}

	if err := b.Records.MarkDeleted(ctx, rec.ID, deleteBatchID); err != nil {
		return reconcile.Wrap(rec.RowNumber, reconcile.StagePersist, err)
	}

	b.Logger.Debug("Deleted record",
		zap.String("kind", b.kind),
		zap.String("record_id", rec.ID),
		zap.String("asset_id", rec.AssetID),
	)
	return nil
}
