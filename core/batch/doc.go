// Package batch runs batches of rows through the data kind executors.
//
// Submissions validate synchronously, create the Process Report and return
// the batch id; the work runs in one tracked goroutine per batch that fans
// rows out to at most Config.Workers concurrent workers. A failing or
// panicking row is logged to the failure log and counted, and never stops the
// batch. Each row gets its own deadline for all remote calls.
//
// The delete workflow reads the records a previous batch created and removes
// them in the same way, linked to the original through the report's
// reference batch id.
package batch
