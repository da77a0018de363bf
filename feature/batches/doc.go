// Package batches exposes the batch workflow over HTTP.
//
// Create batches are accepted with 202 and the batch id; their outcome is
// read back from the process report. Uploaded CSV and XLSX files are stored in
// object storage under the upload prefix before they are parsed.
//
// # HTTP Endpoints
//
//   - POST   /batches/:kind             : Submit JSON rows of one data kind.
//   - POST   /batches                   : Submit JSON rows with columns; the kind is picked by the columns.
//   - POST   /batches/upload            : Upload a CSV or XLSX file (multipart field "file").
//   - DELETE /batches/:id               : Undo a create batch.
//   - GET    /batches                   : Recent process reports.
//   - GET    /batches/:id               : Process report of a batch.
//   - GET    /batches/:id/failures      : Failure log of a batch.
//   - GET    /kinds                     : Registered data kinds and their columns.
//   - GET    /kinds/:kind/records/:id   : A created record by id or natural key.
//
// Invalid input maps to 400, unknown batches and records to 404 and anything
// else to 500.
package batches
