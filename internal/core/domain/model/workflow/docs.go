// Package workflow provides the data-defined state machine model of the
// production order system.
//
// A workflow Type owns a set of statuses and directed transitions between
// them, loaded from storage at runtime rather than compiled into code. This
// keeps state machines administrable: new order, process, and run lifecycles
// can be defined without a redeploy.
//
// Transitions may carry a guard condition: a pure boolean expression over a
// flat context map, evaluated by Evaluate. Guards cannot call functions or
// reach outside the supplied context, which keeps them side-effect-free and
// safe to evaluate inside a storage transaction.
//
// The package only models and validates machines; deciding and applying
// transitions is the job of the services and application layers.
package workflow
