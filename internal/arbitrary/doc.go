// Package arbitrary holds payloads whose shape is not yet known: query strings,
// headers and bodies captured from live traffic.
//
// A Data value is a small tagged tree over null, bool, number, string, array and
// object. It deliberately carries no schema; shape inference happens downstream.
// Values are immutable once built and compare structurally with Equal.
package arbitrary
