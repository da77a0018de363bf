// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure for server settings: listen port, API key,
// request body limit and the graceful shutdown window.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by the start command to configure Fiber.
package server
