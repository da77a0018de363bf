package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"twin-sync/core/catalog"
	catalogmocks "twin-sync/core/catalog/mocks"
	"twin-sync/core/policy"
	"twin-sync/core/report"
)

type priorMap map[string]catalog.AssetRecord

func (p priorMap) FindAsset(_ context.Context, assetID string) (catalog.AssetRecord, bool, error) {
	rec, ok := p[assetID]
	return rec, ok, nil
}

func restrictedMeta() report.Metadata {
	return report.Metadata{
		BPNNumbers:   []string{"BPNL1", " ", "BPNL2"},
		TypeOfAccess: "restricted",
		UsagePolicies: []policy.UsagePolicy{
			{Type: policy.TypeRole, TypeOfAccess: policy.Restricted, Value: "admin"},
			{Type: policy.TypeCustom, TypeOfAccess: policy.Restricted, Value: "gdpr"},
		},
	}
}

func TestAccessConstraints(t *testing.T) {
	got := AccessConstraints(restrictedMeta())
	require.Len(t, got, 2)
	assert.Equal(t, policy.Constraint{LeftOperand: OperandBPN, Operator: "eq", RightOperand: "BPNL2"}, got[1])

	assert.Empty(t, AccessConstraints(report.Metadata{TypeOfAccess: "unrestricted", BPNNumbers: []string{"BPNL1"}}))
}

func TestAssetStep_CreatesWhenAbsent(t *testing.T) {
	ctx := context.Background()
	cat := catalogmocks.NewMemoryCatalog()
	step := NewAssetStep(cat, nil, "http://provider/api", nil)

	row := &Row{Number: 1, ShellID: "shell", SubmodelID: "sm", Meta: restrictedMeta()}
	require.NoError(t, step.Publish(ctx, row, AssetSpec{Name: "part"}, nil))

	assert.Equal(t, catalog.AssetID("shell", "sm"), row.AssetID)
	assert.NotEmpty(t, row.AccessPolicyID)
	assert.NotEmpty(t, row.UsagePolicyID)
	assert.NotEmpty(t, row.ContractDefinitionID)
	assert.False(t, row.Updated)

	assets, policies, contracts := cat.Counts()
	assert.Equal(t, []int{1, 2, 1}, []int{assets, policies, contracts})
	assert.Equal(t, "http://provider/api/shell/sm", cat.Assets[row.AssetID].DataAddress["baseUrl"])
	assert.Equal(t, "gdpr", cat.Policies[row.UsagePolicyID].ExtensibleProperties[policy.CustomKey])

	require.Len(t, row.Policies, 4)
	assert.Equal(t, policy.UsagePolicy{Type: policy.TypeRole, TypeOfAccess: policy.Restricted, Value: "admin"}, row.Policies[0])
	assert.Equal(t, policy.UsagePolicy{Type: policy.TypeCustom, TypeOfAccess: policy.Restricted, Value: "gdpr"}, row.Policies[3])
}

func TestAssetStep_ReplacesWhenPresent(t *testing.T) {
	ctx := context.Background()
	cat := catalogmocks.NewMemoryCatalog()
	prior := priorMap{}
	step := NewAssetStep(cat, prior, "http://provider/api", nil)

	first := &Row{Number: 1, ShellID: "shell", SubmodelID: "sm"}
	require.NoError(t, step.Publish(ctx, first, AssetSpec{Name: "part"}, nil))
	prior[first.AssetID] = catalog.AssetRecord{
		AccessPolicyID:       first.AccessPolicyID,
		UsagePolicyID:        first.UsagePolicyID,
		ContractDefinitionID: first.ContractDefinitionID,
	}

	second := &Row{Number: 1, ShellID: "shell", SubmodelID: "sm"}
	require.NoError(t, step.Publish(ctx, second, AssetSpec{Name: "part"}, nil))

	assert.True(t, second.Updated)
	assert.Equal(t, first.AssetID, second.AssetID)
	assert.NotEqual(t, first.UsagePolicyID, second.UsagePolicyID)

	assets, policies, contracts := cat.Counts()
	assert.Equal(t, []int{1, 2, 1}, []int{assets, policies, contracts})
}

func TestAssetStep_OldAssetCleanupIsBestEffort(t *testing.T) {
	ctx := context.Background()
	cat := catalogmocks.NewMemoryCatalog()
	step := NewAssetStep(cat, nil, "http://provider/api", nil)

	oldID := catalog.AssetID("shell", "old-sm")
	cat.Assets[oldID] = catalog.Asset{ID: oldID}
	cat.FailDelete[oldID] = errors.New("connector unavailable")

	row := &Row{Number: 7, ShellID: "shell", SubmodelID: "new-sm", OldSubmodelID: "old-sm"}
	require.NoError(t, step.Publish(ctx, row, AssetSpec{Name: "bom"}, nil))
	assert.Equal(t, catalog.AssetID("shell", "new-sm"), row.AssetID)

	delete(cat.FailDelete, oldID)
	row2 := &Row{Number: 8, ShellID: "shell", SubmodelID: "newer-sm", OldSubmodelID: "old-sm"}
	require.NoError(t, step.Publish(ctx, row2, AssetSpec{Name: "bom"}, nil))
	_, stillThere := cat.Assets[oldID]
	assert.False(t, stillThere)
}

func TestAssetStep_DeleteFailureIsServiceError(t *testing.T) {
	ctx := context.Background()
	cat := new(catalogmocks.Client)
	step := NewAssetStep(cat, nil, "", nil)

	id := catalog.AssetID("shell", "sm")
	cat.On("AssetExists", ctx, id).Return(true, nil)
	cat.On("DeleteAsset", ctx, id).Return(errors.New("409 conflict"))

	err := step.Publish(ctx, &Row{Number: 2, ShellID: "shell", SubmodelID: "sm"}, AssetSpec{}, nil)
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "replace asset", se.Op)
	cat.AssertNotCalled(t, "CreateAsset", mock.Anything, mock.Anything)
}

func TestAssetStep_NotFoundDuringReplaceProceeds(t *testing.T) {
	ctx := context.Background()
	cat := new(catalogmocks.Client)
	step := NewAssetStep(cat, nil, "", nil)

	id := catalog.AssetID("shell", "sm")
	cat.On("AssetExists", ctx, id).Return(true, nil)
	cat.On("DeleteAsset", ctx, id).Return(catalog.ErrNotFound)
	cat.On("CreatePolicy", ctx, mock.Anything).Return(nil).Twice()
	cat.On("CreateContractDefinition", ctx, mock.Anything).Return(nil)
	cat.On("CreateAsset", ctx, mock.Anything).Return(nil)

	row := &Row{Number: 3, ShellID: "shell", SubmodelID: "sm"}
	require.NoError(t, step.Publish(ctx, row, AssetSpec{}, nil))
	assert.True(t, row.Updated)
	cat.AssertExpectations(t)
}

func TestAssetStep_RequiresShellAndSubmodel(t *testing.T) {
	step := NewAssetStep(catalogmocks.NewMemoryCatalog(), nil, "", nil)
	assert.Error(t, step.Publish(context.Background(), &Row{Number: 1}, AssetSpec{}, nil))
}

func TestAssetStep_CommitRunsWithIDsAttached(t *testing.T) {
	ctx := context.Background()
	cat := catalogmocks.NewMemoryCatalog()
	step := NewAssetStep(cat, nil, "", nil)

	var committed string
	row := &Row{Number: 1, ShellID: "shell", SubmodelID: "sm"}
	require.NoError(t, step.Publish(ctx, row, AssetSpec{}, func(_ context.Context, r *Row) error {
		committed = r.ContractDefinitionID
		return nil
	}))
	assert.NotEmpty(t, committed)
	assert.Equal(t, row.ContractDefinitionID, committed)
}

func TestAssetStep_FailedCommitWithdrawsAsset(t *testing.T) {
	ctx := context.Background()
	cat := catalogmocks.NewMemoryCatalog()
	step := NewAssetStep(cat, nil, "", nil)

	saveErr := errors.New("database is locked")
	err := step.Publish(ctx, &Row{Number: 1, ShellID: "shell", SubmodelID: "sm"}, AssetSpec{},
		func(context.Context, *Row) error { return saveErr })
	require.ErrorIs(t, err, saveErr)

	assets, policies, contracts := cat.Counts()
	assert.Equal(t, []int{0, 0, 0}, []int{assets, policies, contracts})
}

func TestAssetStep_DropsRecordedOldAsset(t *testing.T) {
	ctx := context.Background()
	cat := catalogmocks.NewMemoryCatalog()
	step := NewAssetStep(cat, nil, "", nil)

	// The old submodel hung off another shell.
	oldID := catalog.AssetID("previous-shell", "old-sm")
	cat.Assets[oldID] = catalog.Asset{ID: oldID}
	wrongID := catalog.AssetID("shell", "old-sm")
	cat.Assets[wrongID] = catalog.Asset{ID: wrongID}

	row := &Row{Number: 1, ShellID: "shell", SubmodelID: "new-sm", OldSubmodelID: "old-sm", OldAssetID: oldID}
	require.NoError(t, step.Publish(ctx, row, AssetSpec{}, nil))

	_, oldThere := cat.Assets[oldID]
	assert.False(t, oldThere)
	_, wrongThere := cat.Assets[wrongID]
	assert.True(t, wrongThere)
}
