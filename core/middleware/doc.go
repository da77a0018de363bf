// Package middleware contains HTTP middleware for the batch API.
//
// # Components
//
//   - Auth: checks the X-API-Key header against server.api_key. Swagger is
//     registered before it and stays public.
//   - RayID: assigns every request a ray id, stores it in the fiber locals
//     read by logger.WithRayID and echoes it in the response headers, so the
//     log lines of one submission can be correlated with its batch id.
package middleware
