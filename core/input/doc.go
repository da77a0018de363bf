// Package input parses batch input files (CSV or XLSX) into a column list and
// rows keyed by lower-cased column name. Uploaded files are read from object
// storage; the CLI parses local files directly.
package input
