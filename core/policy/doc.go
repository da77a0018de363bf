// Package policy derives typed usage policies from contract constraints.
//
// A contract on the dataspace connector carries constraint expressions such as
// role, elapsed-time or purpose. This package maps them to UsagePolicy values
// and back, and guarantees the policy-set invariant: exactly one entry per
// non-custom type (unrestricted when absent) plus one custom entry.
//
//	policies := policy.Resolve(constraints, extensibleProperties)
//	d, ok := policy.ParseDurationPolicy("P0Y0M3DT0H0M0S") // DAY, "3"
//
// Duration parsing keeps only the first non-zero component. "P1Y2M" becomes a
// one-year policy; the two months are dropped.
package policy
