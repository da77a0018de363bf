package twin

import "sort"

// Well-known specific asset id names.
const (
	KeyManufacturerID     = "manufacturerId"
	KeyManufacturerPartID = "manufacturerPartId"
	KeyLifecyclePhase     = "assetLifecyclePhase"
	PhaseAsPlanned        = "AsPlanned"
)

// Shell is a shell descriptor registered in the twin registry.
type Shell struct {
	ID               string            `json:"id"`
	IDShort          string            `json:"idShort,omitempty"`
	GlobalAssetID    string            `json:"globalAssetId,omitempty"`
	SpecificAssetIDs map[string]string `json:"-"`
	Submodels        []Submodel        `json:"submodelDescriptors,omitempty"`
}

// Submodel is a submodel descriptor attached to a shell.
type Submodel struct {
	ID         string `json:"id"`
	IDShort    string `json:"idShort"`
	SemanticID string `json:"semanticId,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
}

// SpecificAssetID is the wire form of one identifying attribute.
type SpecificAssetID struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ToSpecificAssetIDs converts a name/value set into wire form sorted by name.
func ToSpecificAssetIDs(ids map[string]string) []SpecificAssetID {
	out := make([]SpecificAssetID, 0, len(ids))
	for name, value := range ids {
		out = append(out, SpecificAssetID{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FromSpecificAssetIDs converts wire form into a name/value set.
func FromSpecificAssetIDs(ids []SpecificAssetID) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id.Name] = id.Value
	}
	return out
}
