package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/poll"
)

// PollJobs contains poll-related cron jobs
type PollJobs struct {
	pollService poll.PollService
	interval    time.Duration
}

// NewPollJobs creates poll cron jobs running at the given interval
func NewPollJobs(pollService poll.PollService, interval time.Duration) *PollJobs {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PollJobs{pollService: pollService, interval: interval}
}

// RegisterJobs registers all poll-related cron jobs
func (j *PollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("close_expired_polls", j.interval, j.CloseExpiredPolls)
}

// CloseExpiredPolls closes open polls whose closing time has passed
func (j *PollJobs) CloseExpiredPolls(ctx context.Context) error {
	closed, err := j.pollService.CloseExpired(ctx)
	if err != nil {
		return err
	}
	if closed > 0 {
		slog.Info("Cron: Closed expired polls", "count", closed)
	}
	return nil
}
