package order

import (
	"errors"
	"fmt"
	"time"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through NewOrder or RestoreOrder. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is the root of the production hierarchy. It decomposes into
// OrderProcess rows, which decompose into ProcessRun rows, and it tracks how
// many of its processes have completed.
//
// Order follows these invariants:
//   - Must have a valid unique identifier
//   - Must have a non-empty status code governed by the ORDER workflow type
//   - TotalProcesses must be positive
//   - CompletedProcesses stays within [0, TotalProcesses]
//   - Can only be created through NewOrder or RestoreOrder
//
// The status code is data, not an enum: the set of valid statuses lives in the
// ORDER workflow definition. The lifecycleStartedAt timestamp flips from nil
// exactly once, when the first run begins production work; the flip itself is
// a conditional update owned by the repository.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// statusCode is the current ORDER workflow status
	statusCode string

	// totalProcesses is the number of processes the order decomposes into
	totalProcesses int

	// completedProcesses counts processes that reached a terminal status
	completedProcesses int

	// lifecycleStartedAt is set when the first run begins production (nil before)
	lifecycleStartedAt *time.Time

	// completedAt is set when the last process completes (nil before)
	completedAt *time.Time

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates an Order at the given initial status with zero completed
// processes. This is the only way to create a valid new Order.
func NewOrder(id kernel.UUID, statusCode string, totalProcesses int) (*Order, error) {
	order := &Order{isConstructed: true}

	if err := errors.Join(
		order.setID(id),
		order.setStatusCode(statusCode),
		order.setTotalProcesses(totalProcesses),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder reconstructs an Order from persistence, including its counters
// and timestamps. The same invariants as NewOrder apply.
func RestoreOrder(
	id kernel.UUID,
	statusCode string,
	totalProcesses, completedProcesses int,
	lifecycleStartedAt, completedAt *time.Time,
) (*Order, error) {
	order, err := NewOrder(id, statusCode, totalProcesses)
	if err != nil {
		return nil, err
	}

	if completedProcesses < 0 || completedProcesses > totalProcesses {
		return nil, errs.NewValueIsOutOfRangeError(
			"completedProcesses", completedProcesses, 0, totalProcesses)
	}

	order.completedProcesses = completedProcesses
	order.lifecycleStartedAt = lifecycleStartedAt
	order.completedAt = completedAt
	return order, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// StatusCode returns the current ORDER workflow status code.
func (o *Order) StatusCode() string {
	return o.statusCode
}

// TotalProcesses returns the number of processes the order decomposes into.
func (o *Order) TotalProcesses() int {
	return o.totalProcesses
}

// CompletedProcesses returns how many processes have reached a terminal status.
func (o *Order) CompletedProcesses() int {
	return o.completedProcesses
}

// LifecycleStartedAt returns when production work began, or nil.
func (o *Order) LifecycleStartedAt() *time.Time {
	return o.lifecycleStartedAt
}

// CompletedAt returns when the last process completed, or nil.
func (o *Order) CompletedAt() *time.Time {
	return o.completedAt
}

// AllProcessesCompleted reports whether every process has completed.
func (o *Order) AllProcessesCompleted() bool {
	return o.completedProcesses == o.totalProcesses
}

// ApplyStatus records a workflow transition decided by the engine. The caller
// is responsible for having validated the transition; the aggregate only
// rejects empty codes.
func (o *Order) ApplyStatus(statusCode string) error {
	return o.setStatusCode(statusCode)
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setStatusCode(statusCode string) error {
	if statusCode == "" {
		return errs.NewValueIsRequiredError("statusCode")
	}
	o.statusCode = statusCode
	return nil
}

func (o *Order) setTotalProcesses(totalProcesses int) error {
	if totalProcesses <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("totalProcesses",
			fmt.Errorf("%d is not greater than 0", totalProcesses))
	}
	o.totalProcesses = totalProcesses
	return nil
}
