package partasplanned

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"twin-sync/core/kind"
	"twin-sync/core/reconcile"
	"twin-sync/core/twin"
)

// Name is the kind identifier.
const Name = "part-as-planned"

// Schema lists the part-as-planned columns.
var Schema = kind.Schema{
	Name:        Name,
	IDShort:     "PartAsPlanned",
	SemanticID:  "urn:samm:io.catenax.part_as_planned:1.0.1#PartAsPlanned",
	Description: "Part master data of a planned part",
	Fields: []kind.Field{
		{Name: "uuid"},
		{Name: "manufacturer_part_id", Required: true},
		{Name: "name_at_manufacturer", Required: true},
		{Name: "classification"},
		{Name: "valid_from", Type: kind.DateTime},
		{Name: "valid_to", Type: kind.DateTime},
	},
}

// Executor reconciles part-as-planned rows: twin first, then the asset.
type Executor struct {
	*kind.Base
}

// New returns the part-as-planned kind.
func New(deps kind.Deps) kind.Kind {
	return kind.Kind{Schema: Schema, Executor: &Executor{Base: kind.NewBase(Name, deps)}}
}

// ExecuteRow reconciles one row.
func (e *Executor) ExecuteRow(ctx context.Context, row *reconcile.Row, batchID string) (*reconcile.Row, error) {
	if err := e.Prepare(row, batchID); err != nil {
		return nil, err
	}

	id := kind.TextValue(row.Values, "uuid")
	if id == "" {
		id = "urn:uuid:" + uuid.NewString()
		row.Values["uuid"] = id
	}
	mpi := kind.TextValue(row.Values, "manufacturer_part_id")
	name := kind.TextValue(row.Values, "name_at_manufacturer")

	return e.Reconcile(ctx, row, kind.Plan{
		NaturalKey: mpi,
		Identity: reconcile.Identity{
			Attributes:     map[string]string{twin.KeyManufacturerPartID: mpi},
			LifecyclePhase: twin.PhaseAsPlanned,
			ShellIDShort:   shellIDShort(name, mpi),
			GlobalAssetID:  id,
		},
		Submodel: reconcile.SubmodelSpec{IDShort: Schema.IDShort, SemanticID: Schema.SemanticID},
		Asset:    reconcile.AssetSpec{Name: Schema.IDShort + " " + mpi, Description: Schema.Description},
	})
}

func shellIDShort(name, mpi string) string {
	return strings.ReplaceAll(name, " ", "") + "_" + mpi
}
