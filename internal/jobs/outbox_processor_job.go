package jobs

import (
	"context"
	"log/slog"
	"time"

	"prodflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// OutboxProcessorJob polls the transactional outbox every second and drains
// one batch per tick. Each tick runs under a deadline so a stuck batch cannot
// hold its row locks indefinitely.
type OutboxProcessorJob struct {
	handler   commands.ProcessOutboxCommandHandler
	cron      *cron.Cron
	pollSpec  string
	txTimeout time.Duration
	logger    *slog.Logger
}

// NewOutboxProcessorJob creates a job that drains the outbox on the given
// cron schedule. An empty pollSpec falls back to every second.
func NewOutboxProcessorJob(
	handler commands.ProcessOutboxCommandHandler,
	pollSpec string,
	txTimeout time.Duration,
	logger *slog.Logger,
) *OutboxProcessorJob {
	if pollSpec == "" {
		pollSpec = "* * * * * *"
	}

	return &OutboxProcessorJob{
		handler:   handler,
		cron:      cron.New(cron.WithSeconds()),
		pollSpec:  pollSpec,
		txTimeout: txTimeout,
		logger:    logger.With("component", "outbox_processor_job"),
	}
}

// Start begins the outbox processor job.
func (j *OutboxProcessorJob) Start() error {
	_, err := j.cron.AddFunc(j.pollSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.txTimeout)
		defer cancel()

		if err := j.handler.Handle(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Outbox processing tick failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox processor job started", "schedule", j.pollSpec)
	return nil
}

// Stop stops the outbox processor job.
func (j *OutboxProcessorJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Outbox processor job stopped")
}
