package reconcile

import (
	"twin-sync/core/catalog"
	"twin-sync/core/policy"
	"twin-sync/core/report"
)

// Stage names the workflow step a row failed in.
type Stage string

const (
	StageValidate Stage = "validate"
	StageTwin     Stage = "twin"
	StageAsset    Stage = "asset"
	StagePersist  Stage = "persist"
	StageDelete   Stage = "delete"
)

// Row is one input row travelling through the reconciliation steps.
// Steps attach the identifiers they discover or create. A row is owned by
// a single worker at a time.
type Row struct {
	// Number is the 1-based position of the row in its batch.
	Number int `json:"row_number"`

	// BatchID is the batch the row belongs to.
	BatchID string `json:"batch_id"`

	// Fields holds the raw values keyed by column name.
	Fields map[string]string `json:"fields"`

	// Values holds the typed values after schema coercion.
	Values map[string]any `json:"values,omitempty"`

	// ParentID and ChildID link relationship rows.
	ParentID string `json:"parent_id,omitempty"`
	ChildID  string `json:"child_id,omitempty"`

	// Meta is the batch sharing configuration.
	Meta report.Metadata `json:"-"`

	ShellID              string `json:"shell_id,omitempty"`
	SubmodelID           string `json:"submodel_id,omitempty"`
	AssetID              string `json:"asset_id,omitempty"`
	AccessPolicyID       string `json:"access_policy_id,omitempty"`
	UsagePolicyID        string `json:"usage_policy_id,omitempty"`
	ContractDefinitionID string `json:"contract_definition_id,omitempty"`

	// OldSubmodelID is the submodel a previous batch linked to the same
	// natural key, when it differs from the current one.
	OldSubmodelID string `json:"old_submodel_id,omitempty"`

	// OldAssetID is the asset recorded with OldSubmodelID. It may belong to
	// another shell than the current one.
	OldAssetID string `json:"old_asset_id,omitempty"`

	// Policies is the effective usage policy set of the published asset.
	Policies []policy.UsagePolicy `json:"policies,omitempty"`

	// Updated is set once any step takes an update path. It is never cleared.
	Updated bool `json:"updated"`
}

// MarkUpdated flags the row as an update. Classification is OR'd across steps.
func (r *Row) MarkUpdated() {
	r.Updated = true
}

// previousAssetID returns the asset of the previously linked submodel, or ""
// when the row has none.
func (r *Row) previousAssetID() string {
	if r.OldAssetID != "" {
		return r.OldAssetID
	}
	if r.OldSubmodelID != "" {
		return catalog.AssetID(r.ShellID, r.OldSubmodelID)
	}
	return ""
}

// Field returns the trimmed raw value of a column.
func (r *Row) Field(name string) string {
	return trim(r.Fields[name])
}
