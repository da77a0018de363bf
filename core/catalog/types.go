package catalog

import "twin-sync/core/policy"

// Policy kinds.
const (
	PolicyAccess = "access"
	PolicyUsage  = "usage"
)

// Asset is a catalog entry exposing one submodel.
type Asset struct {
	ID          string            `json:"@id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	ContentType string            `json:"contenttype"`
	Version     string            `json:"version"`
	DataAddress map[string]string `json:"dataAddress"`
}

// PolicyDefinition is an access or usage policy.
type PolicyDefinition struct {
	ID                   string              `json:"@id"`
	Kind                 string              `json:"kind"`
	Action               string              `json:"action"`
	Constraints          []policy.Constraint `json:"constraints"`
	ExtensibleProperties map[string]string   `json:"extensibleProperties,omitempty"`
}

// ContractDefinition binds an asset to its policies.
type ContractDefinition struct {
	ID               string `json:"@id"`
	AccessPolicyID   string `json:"accessPolicyId"`
	ContractPolicyID string `json:"contractPolicyId"`
	AssetID          string `json:"assetId"`
}

// AssetRecord holds the ids created for one published asset.
type AssetRecord struct {
	AssetID              string
	AccessPolicyID       string
	UsagePolicyID        string
	ContractDefinitionID string
}

// AssetID derives the asset id for a shell and submodel pair.
func AssetID(shellID, submodelID string) string {
	return shellID + "-" + submodelID
}
