// Package catalog provides the dataspace connector client used to publish
// submodel data as catalog assets.
//
// An asset id is a pure function of the shell and submodel ids, so at most one
// asset exists per pair. Publish creates an asset with its access policy,
// usage policy and contract definition; Withdraw removes them and treats 404
// as already gone.
package catalog
