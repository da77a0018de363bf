package relationship

import (
	"context"

	"twin-sync/core/kind"
	"twin-sync/core/reconcile"
	"twin-sync/core/twin"
)

// Name is the kind identifier.
const Name = "single-level-bom-as-planned"

// Schema lists the single-level BOM columns.
var Schema = kind.Schema{
	Name:        Name,
	IDShort:     "SingleLevelBomAsPlanned",
	SemanticID:  "urn:samm:io.catenax.single_level_bom_as_planned:2.0.0#SingleLevelBomAsPlanned",
	Description: "Planned parent/child relationship of parts",
	Fields: []kind.Field{
		{Name: "parent_uuid", Required: true},
		{Name: "parent_manufacturer_part_id", Required: true},
		{Name: "child_uuid", Required: true},
		{Name: "quantity_number", Type: kind.Number},
		{Name: "measurement_unit"},
		{Name: "created_on", Type: kind.DateTime},
		{Name: "last_modification_on", Type: kind.DateTime},
	},
}

// Executor reconciles relationship rows. The parent twin must exist already;
// the relationship only adds its submodel and asset to it.
type Executor struct {
	*kind.Base
}

// New returns the single-level BOM kind.
func New(deps kind.Deps) kind.Kind {
	return kind.Kind{Schema: Schema, Executor: &Executor{Base: kind.NewBase(Name, deps)}}
}

// ExecuteRow reconciles one row.
func (e *Executor) ExecuteRow(ctx context.Context, row *reconcile.Row, batchID string) (*reconcile.Row, error) {
	if err := e.Prepare(row, batchID); err != nil {
		return nil, err
	}

	row.ParentID = kind.TextValue(row.Values, "parent_uuid")
	row.ChildID = kind.TextValue(row.Values, "child_uuid")
	parentMPI := kind.TextValue(row.Values, "parent_manufacturer_part_id")

	return e.Reconcile(ctx, row, kind.Plan{
		NaturalKey: NaturalKey(row.ParentID, row.ChildID),
		Identity: reconcile.Identity{
			Attributes:     map[string]string{twin.KeyManufacturerPartID: parentMPI},
			LifecyclePhase: twin.PhaseAsPlanned,
		},
		LookupOnly: true,
		TrackPrior: true,
		Submodel:   reconcile.SubmodelSpec{IDShort: Schema.IDShort, SemanticID: Schema.SemanticID},
		Asset:      reconcile.AssetSpec{Name: Schema.IDShort + " " + row.ParentID, Description: Schema.Description},
	})
}

// NaturalKey identifies a parent/child pair.
func NaturalKey(parentID, childID string) string {
	return childID + "|" + parentID
}
