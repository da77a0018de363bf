// Package report tracks the Process Report of every batch.
//
// A report moves STARTED -> RUNNING -> FINISHED or FAILED and is written only
// through the Aggregator. Row workers increment lock-free Counters; the final
// counts are applied once in FinishBuild/FinishDelete after all workers are
// done. For create batches success is reported net of updated rows, so
// success + updated + failure equals the number of rows.
package report
