package kind

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"twin-sync/core/catalog"
	catalogmocks "twin-sync/core/catalog/mocks"
	"twin-sync/core/database"
	"twin-sync/core/reconcile"
	"twin-sync/core/record"
	"twin-sync/core/twin"
	twinmocks "twin-sync/core/twin/mocks"
)

type fixture struct {
	base     *Base
	registry *twinmocks.MemoryRegistry
	catalog  *catalogmocks.MemoryCatalog
	records  *record.Store
}

func newFixture(t *testing.T) *fixture {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &record.Record{}))

	records := record.NewStore(db)
	reg := twinmocks.NewMemoryRegistry()
	cat := catalogmocks.NewMemoryCatalog()

	base := NewBase(testSchema.Name, Deps{
		Records:  records,
		Registry: reg,
		Catalog:  cat,
		Twins:    reconcile.NewTwinStep(reg, "BPN1", nil),
		Assets:   reconcile.NewAssetStep(cat, records, "http://provider", nil),
	})
	require.NoError(t, base.Init(testSchema))
	return &fixture{base: base, registry: reg, catalog: cat, records: records}
}

func partPlan(row *reconcile.Row) Plan {
	mpi := row.Values["manufacturer_part_id"].(string)
	return Plan{
		NaturalKey: mpi,
		Identity: reconcile.Identity{
			Attributes:     map[string]string{twin.KeyManufacturerPartID: mpi},
			LifecyclePhase: twin.PhaseAsPlanned,
		},
		Submodel: reconcile.SubmodelSpec{IDShort: testSchema.IDShort},
		Asset:    reconcile.AssetSpec{Name: "part"},
	}
}

func (f *fixture) run(t *testing.T, batchID string, number int, mpi string) (*reconcile.Row, error) {
	row := &reconcile.Row{Number: number, Fields: map[string]string{"manufacturer_part_id": mpi, "weight": "1"}}
	require.NoError(t, f.base.Prepare(row, batchID))
	return f.base.Reconcile(context.Background(), row, partPlan(row))
}

func TestBase_PrepareRequiresInit(t *testing.T) {
	b := NewBase("x", Deps{})
	err := b.Prepare(&reconcile.Row{Number: 3}, "b1")
	assert.Equal(t, reconcile.StageValidate, reconcile.StageOf(err))

	require.NoError(t, b.Init(testSchema))
	row := &reconcile.Row{Number: 3, Fields: map[string]string{"weight": "x", "manufacturer_part_id": "a"}}
	err = b.Prepare(row, "b1")
	assert.True(t, IsValidation(err))
	assert.Equal(t, "b1", row.BatchID)
}

func TestBase_ReconcileIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.run(t, "b1", 1, "MPI-1")
	require.NoError(t, err)
	assert.False(t, first.Updated)

	second, err := f.run(t, "b2", 1, "MPI-1")
	require.NoError(t, err)
	assert.True(t, second.Updated)

	assert.Len(t, f.registry.Shells(), 1)
	assert.Equal(t, first.ShellID, second.ShellID)
	assert.Equal(t, first.AssetID, second.AssetID)
	assets, policies, contracts := f.catalog.Counts()
	assert.Equal(t, []int{1, 2, 1}, []int{assets, policies, contracts})

	n, err := f.base.CountUpdatedRows(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = f.base.CountUpdatedRows(ctx, "b1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBase_DeleteRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.run(t, "b1", 1, "MPI-1")
	require.NoError(t, err)
	_, err = f.run(t, "b1", 2, "MPI-2")
	require.NoError(t, err)

	recs, err := f.base.ReadRecordsForDelete(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Second record's asset vanished remotely; deletion still succeeds.
	delete(f.catalog.Assets, recs[1].AssetID)

	for _, rec := range recs {
		require.NoError(t, f.base.DeleteRecord(ctx, rec, "del-1", "b1"))
	}

	assets, policies, contracts := f.catalog.Counts()
	assert.Equal(t, []int{0, 0, 0}, []int{assets, policies, contracts})
	for _, shell := range f.registry.Shells() {
		assert.Empty(t, shell.Submodels)
	}

	recs, err = f.base.ReadRecordsForDelete(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, recs)

	got, err := f.base.ReadRecord(ctx, "MPI-1")
	require.NoError(t, err)
	assert.Equal(t, "del-1", got.DeletedBatchID)
}

func TestBase_DeleteRecordServiceError(t *testing.T) {
	cat := new(catalogmocks.Client)
	b := NewBase("x", Deps{Catalog: cat})
	cat.On("DeleteAsset", mock.Anything, "asset").Return(errors.New("500 internal"))

	rec := record.Record{ID: "r1", BatchID: "b1", RowNumber: 5, AssetID: "asset"}
	err := b.DeleteRecord(context.Background(), rec, "del", "b1")

	var re *reconcile.RowError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 5, re.Row)
	assert.Equal(t, reconcile.StageDelete, re.Stage)
	var se *reconcile.ServiceError
	assert.ErrorAs(t, err, &se)

	err = b.DeleteRecord(context.Background(), rec, "del", "other")
	assert.Error(t, err)
}

func TestBase_TrackPriorDropsOldAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	row := &reconcile.Row{Number: 1, Fields: map[string]string{"manufacturer_part_id": "MPI-1"}}
	require.NoError(t, f.base.Prepare(row, "b1"))
	plan := partPlan(row)
	plan.TrackPrior = true
	_, err := f.base.Reconcile(ctx, row, plan)
	require.NoError(t, err)
	oldAsset := row.AssetID

	// Replace the submodel remotely so the next run creates a new one.
	require.NoError(t, f.registry.DeleteSubmodel(ctx, row.ShellID, row.SubmodelID))

	next := &reconcile.Row{Number: 1, Fields: map[string]string{"manufacturer_part_id": "MPI-1"}}
	require.NoError(t, f.base.Prepare(next, "b2"))
	_, err = f.base.Reconcile(ctx, next, plan)
	require.NoError(t, err)

	assert.Equal(t, row.SubmodelID, next.OldSubmodelID)
	_, stillThere := f.catalog.Assets[oldAsset]
	assert.False(t, stillThere)
	_, exists := f.catalog.Assets[catalog.AssetID(next.ShellID, next.SubmodelID)]
	assert.True(t, exists)
}

type failingSave struct {
	*record.Store
}

func (failingSave) Save(context.Context, *record.Record) error {
	return errors.New("disk full")
}

func TestBase_PersistFailureWithdrawsAsset(t *testing.T) {
	f := newFixture(t)
	f.base.Records = failingSave{Store: f.records}

	_, err := f.run(t, "b1", 2, "MPI-1")
	require.Error(t, err)
	assert.Equal(t, reconcile.StagePersist, reconcile.StageOf(err))
	assert.Contains(t, err.Error(), "disk full")

	assets, policies, contracts := f.catalog.Counts()
	assert.Equal(t, []int{0, 0, 0}, []int{assets, policies, contracts})
}
