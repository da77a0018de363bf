// Package pcf is the product carbon footprint data kind. PCF rows attach the
// PCF submodel to the part's AsPlanned twin, creating the twin when the part
// is not registered yet.
package pcf
