// Package queries contains read-only operations in the CQRS architecture.
// Query handlers bypass the domain model and read projection-friendly rows
// straight from the database.
package queries

import (
	"errors"
	"time"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
	"prodflow/internal/pkg/guard"
)

// ErrGetAuditTrailQueryIsNotConstructed is returned when the query was not
// created via NewGetAuditTrailQuery.
var ErrGetAuditTrailQueryIsNotConstructed = errors.New(
	"GetAuditTrailQuery must be created via NewGetAuditTrailQuery constructor",
)

// GetAuditTrailQuery retrieves the transition history of one aggregate in
// chronological order.
type GetAuditTrailQuery struct {
	aggregateID string

	guard guard.ConstructorGuard
}

// NewGetAuditTrailQuery creates a query for an aggregate's transition history.
func NewGetAuditTrailQuery(aggregateID string) (GetAuditTrailQuery, error) {
	if aggregateID == "" {
		return GetAuditTrailQuery{}, errs.NewValueIsRequiredError("aggregateID")
	}

	return GetAuditTrailQuery{
		aggregateID: aggregateID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetAuditTrailQuery) Validate() error {
	return q.guard.Validate(ErrGetAuditTrailQueryIsNotConstructed)
}

// AggregateID returns the aggregate whose history is requested.
func (q GetAuditTrailQuery) AggregateID() string {
	return q.aggregateID
}

// GetAuditTrailQueryResponse is one entry of an aggregate's transition
// history. FromStatus is empty for the creation entry.
type GetAuditTrailQueryResponse struct {
	ID            kernel.UUID
	AggregateType string
	FromStatus    string
	ToStatus      string
	CreatedAt     time.Time
}
