package twin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"twin-sync/core/remote"
)

// ErrNotFound is returned (wrapped) when the registry answers 404.
var ErrNotFound = remote.ErrNotFound

// Client defines the digital twin registry operations.
type Client interface {
	LookupShells(ctx context.Context, ids map[string]string) ([]string, error)
	CreateShell(ctx context.Context, shell Shell) (Shell, error)
	UpdateSpecificAssetIDs(ctx context.Context, shellID string, ids map[string]string) error
	ListSubmodels(ctx context.Context, shellID string) ([]Submodel, error)
	CreateSubmodel(ctx context.Context, shellID string, submodel Submodel) (Submodel, error)
	DeleteSubmodel(ctx context.Context, shellID, submodelID string) error
}

// HTTPClient talks to an AAS style registry over REST.
type HTTPClient struct {
	api *remote.Client
}

// NewClient creates a registry client from configuration.
func NewClient(cfg Config) *HTTPClient {
	return &HTTPClient{api: remote.NewClient(cfg.BaseURL, cfg.Timeout(), map[string]string{"X-Api-Key": cfg.APIKey})}
}

type shellWire struct {
	ID               string            `json:"id"`
	IDShort          string            `json:"idShort,omitempty"`
	GlobalAssetID    string            `json:"globalAssetId,omitempty"`
	SpecificAssetIDs []SpecificAssetID `json:"specificAssetIds"`
	Submodels        []Submodel        `json:"submodelDescriptors,omitempty"`
}

type paged[T any] struct {
	Result []T `json:"result"`
}

func encodeID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// LookupShells returns the ids of shells carrying every given specific asset id.
func (c *HTTPClient) LookupShells(ctx context.Context, ids map[string]string) ([]string, error) {
	query, err := json.Marshal(ToSpecificAssetIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to encode lookup query: %w", err)
	}
	var out paged[string]
	if err := c.api.Do(ctx, http.MethodGet, "/lookup/shells?assetIds="+url.QueryEscape(string(query)), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to lookup shells: %w", err)
	}
	return out.Result, nil
}

// CreateShell registers a new shell descriptor.
func (c *HTTPClient) CreateShell(ctx context.Context, shell Shell) (Shell, error) {
	in := shellWire{
		ID:               shell.ID,
		IDShort:          shell.IDShort,
		GlobalAssetID:    shell.GlobalAssetID,
		SpecificAssetIDs: ToSpecificAssetIDs(shell.SpecificAssetIDs),
		Submodels:        shell.Submodels,
	}
	var out shellWire
	if err := c.api.Do(ctx, http.MethodPost, "/shell-descriptors", in, &out); err != nil {
		return Shell{}, fmt.Errorf("failed to create shell %s: %w", shell.ID, err)
	}
	if out.ID == "" {
		return shell, nil
	}
	return Shell{
		ID:               out.ID,
		IDShort:          out.IDShort,
		GlobalAssetID:    out.GlobalAssetID,
		SpecificAssetIDs: FromSpecificAssetIDs(out.SpecificAssetIDs),
		Submodels:        out.Submodels,
	}, nil
}

// UpdateSpecificAssetIDs replaces the specific asset ids linked to a shell.
func (c *HTTPClient) UpdateSpecificAssetIDs(ctx context.Context, shellID string, ids map[string]string) error {
	if err := c.api.Do(ctx, http.MethodPost, "/lookup/shells/"+encodeID(shellID), ToSpecificAssetIDs(ids), nil); err != nil {
		return fmt.Errorf("failed to update asset ids of shell %s: %w", shellID, err)
	}
	return nil
}

// ListSubmodels returns the submodel descriptors of a shell.
func (c *HTTPClient) ListSubmodels(ctx context.Context, shellID string) ([]Submodel, error) {
	var out paged[Submodel]
	if err := c.api.Do(ctx, http.MethodGet, "/shell-descriptors/"+encodeID(shellID)+"/submodel-descriptors", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list submodels of shell %s: %w", shellID, err)
	}
	return out.Result, nil
}

// CreateSubmodel attaches a submodel descriptor to a shell.
func (c *HTTPClient) CreateSubmodel(ctx context.Context, shellID string, submodel Submodel) (Submodel, error) {
	var out Submodel
	if err := c.api.Do(ctx, http.MethodPost, "/shell-descriptors/"+encodeID(shellID)+"/submodel-descriptors", submodel, &out); err != nil {
		return Submodel{}, fmt.Errorf("failed to create submodel %s on shell %s: %w", submodel.IDShort, shellID, err)
	}
	if out.ID == "" {
		return submodel, nil
	}
	return out, nil
}

// DeleteSubmodel removes a submodel descriptor from a shell.
func (c *HTTPClient) DeleteSubmodel(ctx context.Context, shellID, submodelID string) error {
	path := "/shell-descriptors/" + encodeID(shellID) + "/submodel-descriptors/" + encodeID(submodelID)
	if err := c.api.Do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete submodel %s of shell %s: %w", submodelID, shellID, err)
	}
	return nil
}
