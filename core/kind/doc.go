// Package kind defines data kinds: a field schema plus an Executor that runs
// the reconciliation workflow for rows of that schema.
//
// Kinds are registered in a Registry; FindMatching walks it in registration
// order so automation mode picks the first kind whose column set equals the
// input's. Field coercion is compiled once per batch by Init into one
// function per field.
//
// Base carries everything kinds share (coercion, twin/asset/persist sequencing,
// record backed counting and deletion), so a kind only supplies ExecuteRow.
package kind
