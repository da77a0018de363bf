package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"twin-sync/core/batch"
	"twin-sync/core/catalog"
	"twin-sync/core/config"
	"twin-sync/core/database"
	"twin-sync/core/failurelog"
	"twin-sync/core/input"
	"twin-sync/core/kind"
	"twin-sync/core/logger"
	"twin-sync/core/reconcile"
	"twin-sync/core/record"
	"twin-sync/core/report"
	"twin-sync/core/storage"
	"twin-sync/core/twin"
	"twin-sync/feature/partasplanned"
	"twin-sync/feature/pcf"
	"twin-sync/feature/relationship"
)

// services is everything a command needs to run batches.
type services struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	storage storage.Client
	orch    *batch.Orchestrator
}

// models are the tables owned by the service.
func models() []any {
	return []any{&report.ProcessReport{}, &failurelog.Entry{}, &record.Record{}}
}

// newKinds registers the data kinds. Registration order decides which kind
// wins when columns match more than one.
func newKinds(deps kind.Deps) (*kind.Registry, error) {
	reg := kind.NewRegistry()
	for _, k := range []kind.Kind{
		partasplanned.New(deps),
		relationship.New(deps),
		pcf.New(deps),
	} {
		if err := reg.Register(k); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// loadConfig loads configuration and builds the logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logg, nil
}

// bootstrap connects the database, migrates it and wires the orchestrator.
// Storage is optional: without it uploads are disabled.
func bootstrap(ctx context.Context, withStorage bool) (*services, error) {
	cfg, logg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, models()...); err != nil {
		return nil, err
	}

	rt := &services{cfg: cfg, log: logg, db: db}

	var source batch.Source
	if withStorage {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Warn("Storage unavailable, uploads disabled", zap.Error(err))
		} else if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			logg.Warn("Upload bucket unavailable, uploads disabled", zap.Error(err))
		} else {
			rt.storage = client
			source = input.NewParser(client, cfg.Storage.Bucket)
		}
	}

	registry := twin.NewClient(cfg.Registry)
	connector := catalog.NewClient(cfg.Catalog)
	records := record.NewStore(db)

	deps := kind.Deps{
		Records:  records,
		Registry: registry,
		Catalog:  connector,
		Twins:    reconcile.NewTwinStep(registry, cfg.Registry.ManufacturerID, logg),
		Assets:   reconcile.NewAssetStep(connector, records, cfg.Catalog.DataAddressURL, logg),
		Logger:   logg,
	}
	kinds, err := newKinds(deps)
	if err != nil {
		return nil, err
	}

	reports := report.NewAggregator(report.NewGormStore(db), logg)
	rt.orch = batch.New(cfg.Batch, kinds, reports, failurelog.NewGormSink(db), source, logg)
	return rt, nil
}
