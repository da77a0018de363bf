package mocks

import (
	"context"
	"fmt"
	"sync"

	"twin-sync/core/catalog"
)

// MemoryCatalog is an in-memory catalog.Client.
type MemoryCatalog struct {
	mu        sync.Mutex
	Assets    map[string]catalog.Asset
	Policies  map[string]catalog.PolicyDefinition
	Contracts map[string]catalog.ContractDefinition

	// FailDelete makes DeleteAsset fail for the listed ids.
	FailDelete map[string]error
}

// NewMemoryCatalog creates an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		Assets:     map[string]catalog.Asset{},
		Policies:   map[string]catalog.PolicyDefinition{},
		Contracts:  map[string]catalog.ContractDefinition{},
		FailDelete: map[string]error{},
	}
}

// Counts returns the number of assets, policies and contract definitions.
func (c *MemoryCatalog) Counts() (assets, policies, contracts int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Assets), len(c.Policies), len(c.Contracts)
}

func (c *MemoryCatalog) AssetExists(_ context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.Assets[id]
	return ok, nil
}

func (c *MemoryCatalog) CreateAsset(_ context.Context, asset catalog.Asset) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Assets[asset.ID]; ok {
		return fmt.Errorf("asset %s already exists", asset.ID)
	}
	c.Assets[asset.ID] = asset
	return nil
}

func (c *MemoryCatalog) CreatePolicy(_ context.Context, def catalog.PolicyDefinition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Policies[def.ID] = def
	return nil
}

func (c *MemoryCatalog) CreateContractDefinition(_ context.Context, def catalog.ContractDefinition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Contracts[def.ID] = def
	return nil
}

func (c *MemoryCatalog) DeleteAsset(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.FailDelete[id]; ok {
		return err
	}
	if _, ok := c.Assets[id]; !ok {
		return fmt.Errorf("asset %s: %w", id, catalog.ErrNotFound)
	}
	delete(c.Assets, id)
	return nil
}

func (c *MemoryCatalog) DeletePolicy(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Policies[id]; !ok {
		return fmt.Errorf("policy %s: %w", id, catalog.ErrNotFound)
	}
	delete(c.Policies, id)
	return nil
}

func (c *MemoryCatalog) DeleteContractDefinition(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Contracts[id]; !ok {
		return fmt.Errorf("contract definition %s: %w", id, catalog.ErrNotFound)
	}
	delete(c.Contracts, id)
	return nil
}
