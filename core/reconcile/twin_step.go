package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"twin-sync/core/twin"
)

// Identity describes the twin a row belongs to.
type Identity struct {
	// Attributes are the domain identifiers of the physical part.
	Attributes map[string]string

	// LifecyclePhase is added as assetLifecyclePhase when set.
	LifecyclePhase string

	// ShellIDShort and GlobalAssetID are used when a shell is created.
	ShellIDShort  string
	GlobalAssetID string
}

// SubmodelSpec describes the submodel a kind attaches to a twin.
type SubmodelSpec struct {
	IDShort    string
	SemanticID string
	Endpoint   string
}

// TwinStep finds or creates the twin of a row and its submodel descriptor.
type TwinStep struct {
	registry       twin.Client
	manufacturerID string
	logger         *zap.Logger
	locks          *keyedLock
	lookups        singleflight.Group
}

// NewTwinStep creates a twin step. manufacturerID is added to every identifier set.
func NewTwinStep(registry twin.Client, manufacturerID string, logger *zap.Logger) *TwinStep {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TwinStep{
		registry:       registry,
		manufacturerID: manufacturerID,
		logger:         logger,
		locks:          newKeyedLock(),
	}
}

// Identifiers returns the full specific asset id set for id.
func (s *TwinStep) Identifiers(id Identity) map[string]string {
	out := make(map[string]string, len(id.Attributes)+2)
	for k, v := range id.Attributes {
		out[k] = strings.TrimSpace(v)
	}
	if s.manufacturerID != "" {
		out[twin.KeyManufacturerID] = s.manufacturerID
	}
	if id.LifecyclePhase != "" {
		out[twin.KeyLifecyclePhase] = id.LifecyclePhase
	}
	return out
}

func identityKey(ids map[string]string) string {
	parts := make([]string, 0, len(ids))
	for k, v := range ids {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// Resolve looks up the twin by its identifier set, creating it when absent
// and refreshing its identifiers when exactly one matches, then ensures the
// submodel. Resolutions of the same identifier set are serialized.
func (s *TwinStep) Resolve(ctx context.Context, row *Row, id Identity, sm SubmodelSpec) error {
	ids := s.Identifiers(id)
	unlock := s.locks.Lock(identityKey(ids))
	defer unlock()

	shells, err := s.registry.LookupShells(ctx, ids)
	if err != nil {
		return serviceErr("lookup shells", err)
	}

	switch len(shells) {
	case 0:
		created, err := s.registry.CreateShell(ctx, twin.Shell{
			ID:               "urn:uuid:" + uuid.NewString(),
			IDShort:          id.ShellIDShort,
			GlobalAssetID:    id.GlobalAssetID,
			SpecificAssetIDs: ids,
		})
		if err != nil {
			return serviceErr("create shell", err)
		}
		row.ShellID = created.ID
		s.logger.Debug("Created shell", zap.Int("row", row.Number), zap.String("shell_id", created.ID))
	case 1:
		row.ShellID = shells[0]
		if err := s.registry.UpdateSpecificAssetIDs(ctx, row.ShellID, ids); err != nil {
			return serviceErr("update shell identifiers", err)
		}
		row.MarkUpdated()
	default:
		return &AmbiguousTwinError{ShellIDs: shells}
	}

	return s.ensureSubmodel(ctx, row, sm)
}

// ResolveExisting finds a twin the row does not own. Zero matches fail with
// ErrTwinNotFound; the shell itself is never created or modified.
func (s *TwinStep) ResolveExisting(ctx context.Context, row *Row, id Identity, sm SubmodelSpec) error {
	ids := s.Identifiers(id)
	key := identityKey(ids)

	found, err, _ := s.lookups.Do(key, func() (any, error) {
		return s.registry.LookupShells(ctx, ids)
	})
	if err != nil {
		return serviceErr("lookup shells", err)
	}
	shells := found.([]string)

	switch len(shells) {
	case 0:
		return fmt.Errorf("%w: %s", ErrTwinNotFound, key)
	case 1:
		row.ShellID = shells[0]
	default:
		return &AmbiguousTwinError{ShellIDs: shells}
	}

	unlock := s.locks.Lock(key)
	defer unlock()
	return s.ensureSubmodel(ctx, row, sm)
}

func (s *TwinStep) ensureSubmodel(ctx context.Context, row *Row, sm SubmodelSpec) error {
	submodels, err := s.registry.ListSubmodels(ctx, row.ShellID)
	if err != nil {
		return serviceErr("list submodels", err)
	}
	for _, existing := range submodels {
		if strings.EqualFold(existing.IDShort, sm.IDShort) {
			row.SubmodelID = existing.ID
			row.MarkUpdated()
			return nil
		}
	}

	created, err := s.registry.CreateSubmodel(ctx, row.ShellID, twin.Submodel{
		ID:         "urn:uuid:" + uuid.NewString(),
		IDShort:    sm.IDShort,
		SemanticID: sm.SemanticID,
		Endpoint:   sm.Endpoint,
	})
	if err != nil {
		return serviceErr("create submodel", err)
	}
	row.SubmodelID = created.ID
	return nil
}
