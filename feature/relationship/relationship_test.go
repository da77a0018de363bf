package relationship

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twin-sync/core/kind/kindtest"
	"twin-sync/core/reconcile"
	"twin-sync/core/record"
	"twin-sync/core/twin"
)

func bomRow(number int, child string) *reconcile.Row {
	return &reconcile.Row{Number: number, Fields: map[string]string{
		"parent_uuid":                 "urn:uuid:parent",
		"parent_manufacturer_part_id": "MPI-P",
		"child_uuid":                  child,
		"quantity_number":             "2",
		"measurement_unit":            "unit:piece",
	}}
}

func putParent(env *kindtest.Env) {
	env.Registry.Put(twin.Shell{ID: "parent-shell", SpecificAssetIDs: map[string]string{
		twin.KeyManufacturerPartID: "MPI-P",
		twin.KeyManufacturerID:     kindtest.ManufacturerID,
		twin.KeyLifecyclePhase:     twin.PhaseAsPlanned,
	}})
}

func TestExecutor_RequiresParentTwin(t *testing.T) {
	env := kindtest.New(t)
	k := kindtest.Init(t, New(env.Deps))

	_, err := k.Executor.ExecuteRow(context.Background(), bomRow(1, "urn:uuid:child-1"), "b1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, reconcile.ErrTwinNotFound))
	assert.Equal(t, reconcile.StageTwin, reconcile.StageOf(err))
	assert.Empty(t, env.Registry.Shells())
}

func TestExecutor_AttachesToParent(t *testing.T) {
	env := kindtest.New(t)
	putParent(env)
	k := kindtest.Init(t, New(env.Deps))
	ctx := context.Background()

	out, err := k.Executor.ExecuteRow(ctx, bomRow(1, "urn:uuid:child-1"), "b1")
	require.NoError(t, err)
	assert.Equal(t, "parent-shell", out.ShellID)
	assert.Equal(t, "urn:uuid:parent", out.ParentID)
	assert.Equal(t, "urn:uuid:child-1", out.ChildID)
	assert.Equal(t, 2.0, out.Values["quantity_number"])
	assert.False(t, out.Updated)

	shells := env.Registry.Shells()
	require.Len(t, shells, 1)
	require.Len(t, shells[0].Submodels, 1)
	assert.Equal(t, "SingleLevelBomAsPlanned", shells[0].Submodels[0].IDShort)
	assert.Zero(t, env.Registry.Calls["UpdateSpecificAssetIDs"])

	rec, err := env.Records.FindByKey(ctx, Name, NaturalKey("urn:uuid:parent", "urn:uuid:child-1"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, out.AssetID, rec.AssetID)
}

func TestExecutor_ResubmitReplacesAsset(t *testing.T) {
	env := kindtest.New(t)
	putParent(env)
	k := kindtest.Init(t, New(env.Deps))
	ctx := context.Background()

	first, err := k.Executor.ExecuteRow(ctx, bomRow(1, "urn:uuid:child-1"), "b1")
	require.NoError(t, err)

	second, err := k.Executor.ExecuteRow(ctx, bomRow(1, "urn:uuid:child-1"), "b2")
	require.NoError(t, err)
	assert.True(t, second.Updated)
	assert.Empty(t, second.OldSubmodelID)
	assert.Equal(t, first.AssetID, second.AssetID)
	assert.NotEqual(t, first.UsagePolicyID, second.UsagePolicyID)

	assets, policies, contracts := env.Catalog.Counts()
	assert.Equal(t, []int{1, 2, 1}, []int{assets, policies, contracts})
}

// slowRecords widens the window between publishing an asset and saving its
// record.
type slowRecords struct {
	*record.Store
}

func (s slowRecords) Save(ctx context.Context, rec *record.Record) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, rec)
}

func TestExecutor_ConcurrentChildrenShareOneContract(t *testing.T) {
	env := kindtest.New(t)
	putParent(env)
	deps := env.Deps
	deps.Records = slowRecords{Store: env.Records}
	k := kindtest.Init(t, New(deps))
	ctx := context.Background()

	const children = 8
	var wg sync.WaitGroup
	errs := make(chan error, children)
	for i := 1; i <= children; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := k.Executor.ExecuteRow(ctx, bomRow(n, fmt.Sprintf("urn:uuid:child-%d", n)), "b1")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assets, policies, contracts := env.Catalog.Counts()
	assert.Equal(t, []int{1, 2, 1}, []int{assets, policies, contracts})

	// The live contract is the one recorded last for the asset.
	var assetID string
	for id := range env.Catalog.Assets {
		assetID = id
	}
	latest, ok, err := env.Records.FindAsset(ctx, assetID)
	require.NoError(t, err)
	require.True(t, ok)
	_, live := env.Catalog.Contracts[latest.ContractDefinitionID]
	assert.True(t, live)
}
