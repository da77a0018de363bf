// Package database handles database connections and schema migration.
//
// It wraps GORM to configure MySQL, PostgreSQL or SQLite connections from the
// application's configuration. Batch reports, failure logs and created twin
// records are all persisted through the connection returned by Connect.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	err = database.Migrate(db, &report.ProcessReport{}, &failurelog.Entry{}, &record.Record{})
package database
