// Package partasplanned is the part-as-planned data kind: one twin per
// manufacturer part id in the AsPlanned lifecycle phase, carrying the
// PartAsPlanned submodel.
package partasplanned
