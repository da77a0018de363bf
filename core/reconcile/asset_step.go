package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"twin-sync/core/catalog"
	"twin-sync/core/policy"
	"twin-sync/core/report"
)

// OperandBPN is the left operand of an access constraint on a partner number.
const OperandBPN = "BusinessPartnerNumber"

// PriorAssets finds catalog ids recorded when an asset was last published.
type PriorAssets interface {
	FindAsset(ctx context.Context, assetID string) (catalog.AssetRecord, bool, error)
}

// AssetSpec describes the catalog entry of a kind.
type AssetSpec struct {
	Name        string
	Description string
}

// AssetStep publishes the submodel of a row as a catalog asset.
type AssetStep struct {
	catalog        catalog.Client
	prior          PriorAssets
	dataAddressURL string
	logger         *zap.Logger
	locks          *keyedLock
}

// NewAssetStep creates an asset step. prior may be nil.
func NewAssetStep(client catalog.Client, prior PriorAssets, dataAddressURL string, logger *zap.Logger) *AssetStep {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssetStep{
		catalog:        client,
		prior:          prior,
		dataAddressURL: dataAddressURL,
		logger:         logger,
		locks:          newKeyedLock(),
	}
}

// Commit persists the outcome of a published row. It runs while the asset
// is still locked.
type Commit func(ctx context.Context, row *Row) error

// Publish creates the asset for the row's shell and submodel, replacing it
// when it already exists. Replacement marks the row as an update. commit, when
// set, runs before the asset lock is released so the next row replacing the
// same asset reads the ids just created; a failed commit withdraws them.
func (s *AssetStep) Publish(ctx context.Context, row *Row, entry AssetSpec, commit Commit) error {
	if row.ShellID == "" || row.SubmodelID == "" {
		return fmt.Errorf("row %d has no shell or submodel to publish", row.Number)
	}
	assetID := catalog.AssetID(row.ShellID, row.SubmodelID)

	if oldID := row.previousAssetID(); oldID != "" && oldID != assetID {
		s.dropOld(ctx, row.Number, oldID)
	}

	unlock := s.locks.Lock(assetID)
	defer unlock()

	exists, err := s.catalog.AssetExists(ctx, assetID)
	if err != nil {
		return serviceErr("check asset", err)
	}
	if exists {
		rec, err := s.recorded(ctx, assetID)
		if err != nil {
			return err
		}
		if err := catalog.Withdraw(ctx, s.catalog, rec); err != nil {
			return serviceErr("replace asset", err)
		}
		row.MarkUpdated()
	}

	usageConstraints, extensible, err := policy.ToConstraints(row.Meta.UsagePolicies)
	if err != nil {
		return fmt.Errorf("usage policy: %w", err)
	}

	access := catalog.PolicyDefinition{
		ID:          uuid.NewString(),
		Kind:        catalog.PolicyAccess,
		Action:      "USE",
		Constraints: AccessConstraints(row.Meta),
	}
	usage := catalog.PolicyDefinition{
		ID:                   uuid.NewString(),
		Kind:                 catalog.PolicyUsage,
		Action:               "USE",
		Constraints:          usageConstraints,
		ExtensibleProperties: extensible,
	}
	asset := catalog.Asset{
		ID:          assetID,
		Name:        entry.Name,
		Description: entry.Description,
		ContentType: "application/json",
		Version:     "1.0.0",
		DataAddress: map[string]string{
			"type":      "HttpData",
			"baseUrl":   s.dataAddressURL + "/" + row.ShellID + "/" + row.SubmodelID,
			"proxyPath": "true",
		},
	}

	rec, err := catalog.Publish(ctx, s.catalog, asset, access, usage)
	if err != nil {
		return serviceErr("publish asset", err)
	}

	row.AssetID = rec.AssetID
	row.AccessPolicyID = rec.AccessPolicyID
	row.UsagePolicyID = rec.UsagePolicyID
	row.ContractDefinitionID = rec.ContractDefinitionID
	row.Policies = policy.Resolve(usageConstraints, extensible)

	if commit == nil {
		return nil
	}
	if err := commit(ctx, row); err != nil {
		if werr := catalog.Withdraw(context.WithoutCancel(ctx), s.catalog, rec); werr != nil {
			s.logger.Warn("Failed to withdraw uncommitted asset",
				zap.Int("row", row.Number),
				zap.String("asset_id", assetID),
				zap.Error(werr),
			)
		}
		return err
	}
	return nil
}

// dropOld removes the asset of a previously linked submodel. Failures are
// logged and ignored.
func (s *AssetStep) dropOld(ctx context.Context, rowNumber int, oldID string) {
	unlock := s.locks.Lock(oldID)
	defer unlock()

	rec, err := s.recorded(ctx, oldID)
	if err == nil {
		err = catalog.Withdraw(ctx, s.catalog, rec)
	}
	if err != nil {
		s.logger.Warn("Failed to delete old asset",
			zap.Int("row", rowNumber),
			zap.String("asset_id", oldID),
			zap.Error(err),
		)
	}
}

func (s *AssetStep) recorded(ctx context.Context, assetID string) (catalog.AssetRecord, error) {
	if s.prior != nil {
		rec, ok, err := s.prior.FindAsset(ctx, assetID)
		if err != nil {
			return catalog.AssetRecord{}, fmt.Errorf("failed to read recorded asset %s: %w", assetID, err)
		}
		if ok {
			rec.AssetID = assetID
			return rec, nil
		}
	}
	return catalog.AssetRecord{AssetID: assetID}, nil
}

// AccessConstraints limits access to the batch partner numbers when access is
// restricted; otherwise the access policy has no constraints.
func AccessConstraints(meta report.Metadata) []policy.Constraint {
	if !meta.Restricted() {
		return []policy.Constraint{}
	}
	out := make([]policy.Constraint, 0, len(meta.BPNNumbers))
	for _, bpn := range meta.BPNNumbers {
		if bpn = trim(bpn); bpn != "" {
			out = append(out, policy.Constraint{LeftOperand: OperandBPN, Operator: "eq", RightOperand: bpn})
		}
	}
	return out
}
