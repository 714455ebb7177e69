// Package workflowrepo provides data transfer objects and mapping functions
// for workflow definition persistence. A workflow type is stored across three
// tables and always loaded whole; transition rows carry a position column
// because consultation order is part of the machine's semantics.
package workflowrepo

import (
	"sort"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/core/domain/model/workflow"

	"github.com/google/uuid"
)

// TypeDTO represents the database structure for persisting workflow types.
type TypeDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code     string    `gorm:"uniqueIndex"`
	IsActive bool
}

// TableName specifies the database table name for workflow types.
func (TypeDTO) TableName() string {
	return "workflow_types"
}

// StatusDTO represents the database structure for persisting workflow statuses.
type StatusDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkflowTypeID uuid.UUID `gorm:"type:uuid;index"`
	Code           string
	IsInitial      bool
	IsTerminal     bool
	Position       int
}

// TableName specifies the database table name for workflow statuses.
func (StatusDTO) TableName() string {
	return "workflow_statuses"
}

// TransitionDTO represents the database structure for persisting workflow
// transitions. Position determines the order edges are consulted in.
type TransitionDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	WorkflowTypeID uuid.UUID `gorm:"type:uuid;index"`
	FromStatusCode string
	ToStatusCode   string
	Condition      string
	Position       int
}

// TableName specifies the database table name for workflow transitions.
func (TransitionDTO) TableName() string {
	return "workflow_transitions"
}

func fromDomain(aggregate *workflow.Type) (TypeDTO, []StatusDTO, []TransitionDTO) {
	typeDTO := TypeDTO{
		ID:       aggregate.ID().Bytes(),
		Code:     aggregate.Code(),
		IsActive: aggregate.IsActive(),
	}

	statuses := make([]StatusDTO, 0, len(aggregate.Statuses()))
	for i, s := range aggregate.Statuses() {
		statuses = append(statuses, StatusDTO{
			ID:             s.ID().Bytes(),
			WorkflowTypeID: typeDTO.ID,
			Code:           s.Code(),
			IsInitial:      s.IsInitial(),
			IsTerminal:     s.IsTerminal(),
			Position:       i,
		})
	}

	transitions := make([]TransitionDTO, 0, len(aggregate.Transitions()))
	for i, t := range aggregate.Transitions() {
		transitions = append(transitions, TransitionDTO{
			ID:             t.ID().Bytes(),
			WorkflowTypeID: typeDTO.ID,
			FromStatusCode: t.FromStatusCode(),
			ToStatusCode:   t.ToStatusCode(),
			Condition:      t.Condition(),
			Position:       i,
		})
	}

	return typeDTO, statuses, transitions
}

func toDomain(typeDTO TypeDTO, statusDTOs []StatusDTO, transitionDTOs []TransitionDTO) (*workflow.Type, error) {
	id, err := kernel.UUIDFromBytes(typeDTO.ID[:])
	if err != nil {
		return nil, err
	}

	sort.Slice(statusDTOs, func(i, j int) bool {
		return statusDTOs[i].Position < statusDTOs[j].Position
	})
	sort.Slice(transitionDTOs, func(i, j int) bool {
		return transitionDTOs[i].Position < transitionDTOs[j].Position
	})

	statuses := make([]workflow.Status, 0, len(statusDTOs))
	for _, dto := range statusDTOs {
		statusID, mapErr := kernel.UUIDFromBytes(dto.ID[:])
		if mapErr != nil {
			return nil, mapErr
		}
		status, mapErr := workflow.NewStatus(statusID, dto.Code, dto.IsInitial, dto.IsTerminal)
		if mapErr != nil {
			return nil, mapErr
		}
		statuses = append(statuses, status)
	}

	transitions := make([]workflow.Transition, 0, len(transitionDTOs))
	for _, dto := range transitionDTOs {
		transitionID, mapErr := kernel.UUIDFromBytes(dto.ID[:])
		if mapErr != nil {
			return nil, mapErr
		}
		transition, mapErr := workflow.NewTransition(
			transitionID, dto.FromStatusCode, dto.ToStatusCode, dto.Condition)
		if mapErr != nil {
			return nil, mapErr
		}
		transitions = append(transitions, transition)
	}

	return workflow.RestoreType(id, typeDTO.Code, typeDTO.IsActive, statuses, transitions)
}
