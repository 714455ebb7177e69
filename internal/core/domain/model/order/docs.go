// Package order contains the three-level production hierarchy being
// orchestrated: Order at the root, OrderProcess in the middle, ProcessRun at
// the leaf.
//
// Each level carries a status code governed by a data-defined workflow type
// (see the workflow package) and completion counters that roll child-level
// completion upward. The aggregates validate structure and expose state; the
// concurrency discipline that makes rollups fire exactly once (versioned
// compare-and-swap on runs, atomic counter increments and null-check boundary
// claims on processes and orders) lives in the repository layer, where the
// relational store can resolve the races.
//
// All aggregates must be created through their constructors; zero-value
// instances fail Validate.
package order
