package pcf

import (
	"context"

	"twin-sync/core/kind"
	"twin-sync/core/reconcile"
	"twin-sync/core/twin"
)

// Name is the kind identifier.
const Name = "pcf"

// Schema lists the product carbon footprint columns.
var Schema = kind.Schema{
	Name:        Name,
	IDShort:     "PCF",
	SemanticID:  "urn:samm:io.catenax.pcf:7.0.0#Pcf",
	Description: "Product carbon footprint of a part",
	Fields: []kind.Field{
		{Name: "manufacturer_part_id", Required: true},
		{Name: "pcf_id", Required: true},
		{Name: "product_name"},
		{Name: "declared_unit"},
		{Name: "unitary_product_amount", Type: kind.Number},
		{Name: "pcf_excluding_biogenic", Type: kind.Number},
		{Name: "pcf_including_biogenic", Type: kind.Number},
		{Name: "reference_period_start", Type: kind.DateTime},
		{Name: "reference_period_end", Type: kind.DateTime},
	},
}

// Executor reconciles PCF rows onto the part's AsPlanned twin.
type Executor struct {
	*kind.Base
}

// New returns the PCF kind.
func New(deps kind.Deps) kind.Kind {
	return kind.Kind{Schema: Schema, Executor: &Executor{Base: kind.NewBase(Name, deps)}}
}

// ExecuteRow reconciles one row.
func (e *Executor) ExecuteRow(ctx context.Context, row *reconcile.Row, batchID string) (*reconcile.Row, error) {
	if err := e.Prepare(row, batchID); err != nil {
		return nil, err
	}
	mpi := kind.TextValue(row.Values, "manufacturer_part_id")

	return e.Reconcile(ctx, row, kind.Plan{
		NaturalKey: mpi,
		Identity: reconcile.Identity{
			Attributes:     map[string]string{twin.KeyManufacturerPartID: mpi},
			LifecyclePhase: twin.PhaseAsPlanned,
			ShellIDShort:   kind.TextValue(row.Values, "product_name") + "_" + mpi,
		},
		Submodel: reconcile.SubmodelSpec{IDShort: Schema.IDShort, SemanticID: Schema.SemanticID},
		Asset:    reconcile.AssetSpec{Name: "PCF " + kind.TextValue(row.Values, "pcf_id"), Description: Schema.Description},
	})
}
