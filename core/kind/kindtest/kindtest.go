// Package kindtest wires kind.Deps against in-memory collaborators for tests.
package kindtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	catalogmocks "twin-sync/core/catalog/mocks"
	"twin-sync/core/database"
	"twin-sync/core/failurelog"
	"twin-sync/core/kind"
	"twin-sync/core/reconcile"
	"twin-sync/core/record"
	"twin-sync/core/report"
	twinmocks "twin-sync/core/twin/mocks"
)

// ManufacturerID is the manufacturer id the twin step adds to identifiers.
const ManufacturerID = "BPNL000000000TST"

// Env holds the collaborators behind Deps.
type Env struct {
	Deps     kind.Deps
	DB       *gorm.DB
	Registry *twinmocks.MemoryRegistry
	Catalog  *catalogmocks.MemoryCatalog
	Records  *record.Store
}

// New migrates an in-memory sqlite database and builds Deps over fakes.
func New(t *testing.T) *Env {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &record.Record{}, &report.ProcessReport{}, &failurelog.Entry{}))

	records := record.NewStore(db)
	reg := twinmocks.NewMemoryRegistry()
	cat := catalogmocks.NewMemoryCatalog()

	return &Env{
		DB:       db,
		Registry: reg,
		Catalog:  cat,
		Records:  records,
		Deps: kind.Deps{
			Records:  records,
			Registry: reg,
			Catalog:  cat,
			Twins:    reconcile.NewTwinStep(reg, ManufacturerID, nil),
			Assets:   reconcile.NewAssetStep(cat, records, "http://provider/api/submodel", nil),
		},
	}
}

// Init binds k's schema and fails the test on error.
func Init(t *testing.T, k kind.Kind) kind.Kind {
	t.Helper()
	require.NoError(t, k.Executor.Init(k.Schema))
	return k
}
