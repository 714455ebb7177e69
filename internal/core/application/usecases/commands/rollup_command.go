package commands

import (
	"errors"

	"prodflow/internal/core/domain/model/kernel"
	"prodflow/internal/pkg/errs"
	"prodflow/internal/pkg/guard"
)

// ErrRollupCommandIsNotConstructed is returned when the command was not
// created via NewRollupCommand.
var ErrRollupCommandIsNotConstructed = errors.New(
	"RollupCommand must be created via NewRollupCommand constructor",
)

// RollupCommand carries a crossed completion boundary to the level above it.
// It is built from a rollup.boundary.crossed event payload: level names the
// aggregate to advance (process or order), stage names which completion track
// crossed, and aggregateID identifies the aggregate.
type RollupCommand struct { //nolint:recvcheck //using for validation
	level       string
	stage       string
	aggregateID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRollupCommand creates a rollup command.
func NewRollupCommand(level, stage string, aggregateID kernel.UUID) (RollupCommand, error) {
	command := RollupCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setLevel(level),
		command.setStage(stage),
		command.setAggregateID(aggregateID),
	); err != nil {
		return RollupCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RollupCommand) Validate() error {
	return c.guard.Validate(ErrRollupCommandIsNotConstructed)
}

// Level returns the aggregate level to advance: LevelProcess or LevelOrder.
func (c RollupCommand) Level() string {
	return c.level
}

// Stage returns the completion track that crossed its boundary.
func (c RollupCommand) Stage() string {
	return c.stage
}

// AggregateID returns the identifier of the aggregate to advance.
func (c RollupCommand) AggregateID() kernel.UUID {
	return c.aggregateID
}

func (c *RollupCommand) setLevel(level string) error {
	if level != LevelProcess && level != LevelOrder {
		return errs.NewValueIsInvalidError("level")
	}

	c.level = level
	return nil
}

func (c *RollupCommand) setStage(stage string) error {
	switch stage {
	case StageConfig, StageLifecycle, StageLifecycleStart, StageCreated:
	default:
		return errs.NewValueIsInvalidError("stage")
	}

	c.stage = stage
	return nil
}

func (c *RollupCommand) setAggregateID(aggregateID kernel.UUID) error {
	if err := aggregateID.Validate(); err != nil {
		return err
	}

	c.aggregateID = aggregateID
	return nil
}
