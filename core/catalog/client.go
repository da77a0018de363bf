package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"twin-sync/core/remote"
)

// ErrNotFound is returned (wrapped) when the connector answers 404.
var ErrNotFound = remote.ErrNotFound

// Client defines the connector management operations.
type Client interface {
	AssetExists(ctx context.Context, id string) (bool, error)
	CreateAsset(ctx context.Context, asset Asset) error
	CreatePolicy(ctx context.Context, def PolicyDefinition) error
	CreateContractDefinition(ctx context.Context, def ContractDefinition) error
	DeleteAsset(ctx context.Context, id string) error
	DeletePolicy(ctx context.Context, id string) error
	DeleteContractDefinition(ctx context.Context, id string) error
}

// HTTPClient talks to the connector management API.
type HTTPClient struct {
	api *remote.Client
}

// NewClient creates a connector client from configuration.
func NewClient(cfg Config) *HTTPClient {
	return &HTTPClient{api: remote.NewClient(cfg.BaseURL, cfg.Timeout(), map[string]string{"X-Api-Key": cfg.APIKey})}
}

// AssetExists reports whether an asset with id is registered.
func (c *HTTPClient) AssetExists(ctx context.Context, id string) (bool, error) {
	err := c.api.Do(ctx, http.MethodGet, "/assets/"+url.PathEscape(id), nil, nil)
	if err == nil {
		return true, nil
	}
	if remote.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check asset %s: %w", id, err)
}

// CreateAsset registers an asset.
func (c *HTTPClient) CreateAsset(ctx context.Context, asset Asset) error {
	if err := c.api.Do(ctx, http.MethodPost, "/assets", asset, nil); err != nil {
		return fmt.Errorf("failed to create asset %s: %w", asset.ID, err)
	}
	return nil
}

// CreatePolicy registers a policy definition.
func (c *HTTPClient) CreatePolicy(ctx context.Context, def PolicyDefinition) error {
	if err := c.api.Do(ctx, http.MethodPost, "/policydefinitions", def, nil); err != nil {
		return fmt.Errorf("failed to create %s policy %s: %w", def.Kind, def.ID, err)
	}
	return nil
}

// CreateContractDefinition registers a contract definition.
func (c *HTTPClient) CreateContractDefinition(ctx context.Context, def ContractDefinition) error {
	if err := c.api.Do(ctx, http.MethodPost, "/contractdefinitions", def, nil); err != nil {
		return fmt.Errorf("failed to create contract definition %s: %w", def.ID, err)
	}
	return nil
}

// DeleteAsset removes an asset.
func (c *HTTPClient) DeleteAsset(ctx context.Context, id string) error {
	return c.delete(ctx, "/assets/", id)
}

// DeletePolicy removes a policy definition.
func (c *HTTPClient) DeletePolicy(ctx context.Context, id string) error {
	return c.delete(ctx, "/policydefinitions/", id)
}

// DeleteContractDefinition removes a contract definition.
func (c *HTTPClient) DeleteContractDefinition(ctx context.Context, id string) error {
	return c.delete(ctx, "/contractdefinitions/", id)
}

func (c *HTTPClient) delete(ctx context.Context, prefix, id string) error {
	if err := c.api.Do(ctx, http.MethodDelete, prefix+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete %s%s: %w", prefix, id, err)
	}
	return nil
}
