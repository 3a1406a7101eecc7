package jobs

import (
	"context"
	"time"

	"rental-engine-backend/internal/config"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
	"rental-engine-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	holds        repository.HoldWriter
	rates        repository.RateTableRepository
	availability service.AvailabilityService
	config       *config.Config
	now          service.Clock
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(
	holds repository.HoldWriter,
	rates repository.RateTableRepository,
	availability service.AvailabilityService,
	cfg *config.Config,
	now service.Clock,
) *JobRunner {
	if now == nil {
		now = time.Now
	}
	return &JobRunner{
		holds:        holds,
		rates:        rates,
		availability: availability,
		config:       cfg,
		now:          now,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	start := jr.now()
	logger.Info("Starting job", "job", jobName)
	jobFunc(context.Background())
	logger.Info("Job completed", "job", jobName, "duration_ms", jr.now().Sub(start).Milliseconds())
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ExpireCartHolds()
	jr.ReportCapacityShortfalls()
}
