// Package record stores the outcome of every reconciled row in the
// twin_records table.
//
// Records are unique per kind and natural key; reconciling the same key again
// overwrites the earlier record, which then belongs to the newer batch. The
// delete workflow reads a batch's live records and marks them deleted.
package record
