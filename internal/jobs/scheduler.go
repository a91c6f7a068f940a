package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Fazeel2019/Upskill-sub000/internal/queue"
)

const (
	PruneSpec = "0 0 3 * * *" // daily at 03:00
	AuditSpec = "0 0 * * * *" // hourly
)

type Enqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

// Scheduler only enqueues; the worker pool does the actual work, so a
// missed tick on one instance is picked up by whichever worker reads it.
type Scheduler struct {
	cron  *cron.Cron
	queue Enqueuer
	log   zerolog.Logger
}

func NewScheduler(queue Enqueuer, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		queue: queue,
		log:   log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(PruneSpec, s.enqueue(queue.TaskNotificationsPrune)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(AuditSpec, s.enqueue(queue.TaskProgressAudit)); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits up to five seconds for a running tick.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueue(taskType string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.queue.Enqueue(ctx, queue.Task{Type: taskType}); err != nil {
			s.log.Error().Err(err).Str("type", taskType).Msg("enqueue scheduled task failed")
			return
		}
		s.log.Debug().Str("type", taskType).Msg("scheduled task enqueued")
	}
}
