// Package remote is the small JSON-over-HTTP client shared by the twin registry
// and asset catalog clients. Non-2xx responses become *StatusError; a 404
// matches ErrNotFound through errors.Is so callers can treat "already gone"
// as success.
package remote
