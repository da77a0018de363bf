package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Publish creates the asset, its access and usage policies and finally the
// contract definition binding them. When a step fails, whatever was already
// created is withdrawn so no contract is left pointing at the asset id.
func Publish(ctx context.Context, c Client, asset Asset, access, usage PolicyDefinition) (AssetRecord, error) {
	var done AssetRecord
	rollback := func(err error) (AssetRecord, error) {
		if werr := Withdraw(context.WithoutCancel(ctx), c, done); werr != nil {
			err = errors.Join(err, fmt.Errorf("rollback of asset %s: %w", asset.ID, werr))
		}
		return AssetRecord{}, err
	}

	if err := c.CreateAsset(ctx, asset); err != nil {
		return AssetRecord{}, err
	}
	done.AssetID = asset.ID

	if err := c.CreatePolicy(ctx, access); err != nil {
		return rollback(err)
	}
	done.AccessPolicyID = access.ID

	if err := c.CreatePolicy(ctx, usage); err != nil {
		return rollback(err)
	}
	done.UsagePolicyID = usage.ID

	contract := ContractDefinition{
		ID:               asset.ID + "-contract-" + usage.ID,
		AccessPolicyID:   access.ID,
		ContractPolicyID: usage.ID,
		AssetID:          asset.ID,
	}
	if err := c.CreateContractDefinition(ctx, contract); err != nil {
		return rollback(err)
	}
	done.ContractDefinitionID = contract.ID
	return done, nil
}

// Withdraw deletes whatever of rec still exists. Missing pieces are skipped;
// the contract definition goes first since it references the rest.
func Withdraw(ctx context.Context, c Client, rec AssetRecord) error {
	if rec.ContractDefinitionID != "" {
		if err := ignoreNotFound(c.DeleteContractDefinition(ctx, rec.ContractDefinitionID)); err != nil {
			return err
		}
	}
	if rec.AssetID != "" {
		if err := ignoreNotFound(c.DeleteAsset(ctx, rec.AssetID)); err != nil {
			return err
		}
	}
	for _, id := range []string{rec.AccessPolicyID, rec.UsagePolicyID} {
		if id == "" {
			continue
		}
		if err := ignoreNotFound(c.DeletePolicy(ctx, id)); err != nil {
			return err
		}
	}
	return nil
}

func ignoreNotFound(err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return nil
	}
	return fmt.Errorf("withdraw: %w", err)
}
