// Package services provides domain services that implement business logic
// spanning multiple aggregates.
//
// The package includes:
//   - WorkflowEngine: validates and computes status transitions against
//     data-defined workflow types
//
// Domain services are pure: they take fully constructed aggregates and
// return decisions, leaving persistence to the application layer.
package services
