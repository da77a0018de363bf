// Package relationship is the single-level BOM (as planned) data kind. A row
// links a child part to its parent; the parent's twin must already exist and
// receives the SingleLevelBomAsPlanned submodel. Rows are keyed by the
// child/parent pair, and a changed submodel for the same pair drops the
// previously published asset.
package relationship
