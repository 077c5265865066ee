package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Enqueuer adds a job to the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, runAt time.Time) error
}

// Scheduler enqueues a WEATHER_FETCH job on a cron schedule.
type Scheduler struct {
	spec  string
	queue Enqueuer
	cron  *cron.Cron
	log   *slog.Logger
}

// NewScheduler takes a standard five-field cron spec (or a descriptor such
// as "@daily") evaluated in loc.
func NewScheduler(spec string, loc *time.Location, queue Enqueuer, log *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		spec:  spec,
		queue: queue,
		cron:  cron.New(cron.WithLocation(loc)),
		log:   log.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.EnqueueWeatherFetch); err != nil {
		return fmt.Errorf("failed to add cron job %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", "spec", s.spec)
	return nil
}

// Stop stops the schedule and waits for a running enqueue to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) EnqueueWeatherFetch() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	payload := WeatherFetchPayload{ScheduledAt: now.UTC()}
	if err := s.queue.Enqueue(ctx, TypeWeatherFetch, payload, now); err != nil {
		s.log.Error("failed to enqueue weather fetch", "error", err)
		return
	}
	s.log.Info("weather fetch enqueued")
}
