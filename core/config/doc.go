// Package config provides configuration management for the twin-sync service.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file (via godotenv). Defaults come from the `default`
// struct tags of each partial configuration.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, limits)
//   - Database: report/record database connection (postgres, mysql, sqlite)
//   - Storage: S3/MinIO credentials and the upload bucket
//   - Log: Logging level and format
//   - Registry: digital twin registry endpoint and manufacturer id
//   - Catalog: dataspace connector endpoint and asset data address
//   - Batch: worker count and per-row timeout
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Registry.BaseURL)
package config
