// Package reconcile holds the per-row reconciliation workflow shared by all
// data kinds.
//
// A Row travels through two steps:
//
//  1. TwinStep resolves the shell by its full identifier set (create on zero
//     matches, refresh on one, AmbiguousTwinError on more) and ensures the
//     kind's submodel descriptor on it.
//  2. AssetStep publishes the shell/submodel pair as a catalog asset with
//     access and usage policies, replacing an existing asset wholesale.
//
// Either step may mark the row as updated; the flag is never cleared. Failures
// are returned as ServiceError or AmbiguousTwinError and wrapped by the caller
// into a RowError carrying the row number and stage.
package reconcile
