package partasplanned

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twin-sync/core/catalog"
	"twin-sync/core/kind"
	"twin-sync/core/kind/kindtest"
	"twin-sync/core/reconcile"
	"twin-sync/core/twin"
)

func row(number int, mpi string) *reconcile.Row {
	return &reconcile.Row{Number: number, Fields: map[string]string{
		"manufacturer_part_id": mpi,
		"name_at_manufacturer": "Brake Disc",
		"valid_from":           "2024-01-01T00:00:00",
	}}
}

func TestExecutor_ExecuteRow(t *testing.T) {
	env := kindtest.New(t)
	k := kindtest.Init(t, New(env.Deps))
	ctx := context.Background()

	out, err := k.Executor.ExecuteRow(ctx, row(1, "MPI-1"), "b1")
	require.NoError(t, err)
	assert.False(t, out.Updated)
	assert.Equal(t, "2024-01-01T00:00:00Z", out.Values["valid_from"])
	assert.Equal(t, catalog.AssetID(out.ShellID, out.SubmodelID), out.AssetID)

	shells := env.Registry.Shells()
	require.Len(t, shells, 1)
	assert.Equal(t, "BrakeDisc_MPI-1", shells[0].IDShort)
	assert.Equal(t, map[string]string{
		twin.KeyManufacturerPartID: "MPI-1",
		twin.KeyManufacturerID:     kindtest.ManufacturerID,
		twin.KeyLifecyclePhase:     twin.PhaseAsPlanned,
	}, shells[0].SpecificAssetIDs)
	require.Len(t, shells[0].Submodels, 1)
	assert.Equal(t, "PartAsPlanned", shells[0].Submodels[0].IDShort)

	// Same identifiers again: update, no duplicates.
	again, err := k.Executor.ExecuteRow(ctx, row(1, "MPI-1"), "b2")
	require.NoError(t, err)
	assert.True(t, again.Updated)
	assert.Len(t, env.Registry.Shells(), 1)
	assets, _, _ := env.Catalog.Counts()
	assert.Equal(t, 1, assets)

	n, err := k.Executor.CountUpdatedRows(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, err := k.Executor.ReadRecord(ctx, "MPI-1")
	require.NoError(t, err)
	view := k.View(rec)
	assert.Equal(t, "b2", view["batch_id"])
	assert.Len(t, view["fields"], len(Schema.Fields))
}

func TestExecutor_ValidationFailure(t *testing.T) {
	env := kindtest.New(t)
	k := kindtest.Init(t, New(env.Deps))

	r := row(4, "")
	_, err := k.Executor.ExecuteRow(context.Background(), r, "b1")
	require.Error(t, err)
	assert.True(t, kind.IsValidation(err))
	assert.Equal(t, reconcile.StageValidate, reconcile.StageOf(err))
	assert.Empty(t, env.Registry.Shells())
}
