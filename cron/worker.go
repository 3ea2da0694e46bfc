package cron

import (
	"context"
	"fmt"
	"time"

	"regwizard/config"
	draftRepo "regwizard/database/repository/draft"
	"regwizard/metrics"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeDraftPurge = "draft:purge"

// DraftPurger removes drafts nobody has saved for MaxAge.
type DraftPurger struct {
	Repo    draftRepo.DraftRepository
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	MaxAge  time.Duration
	Now     func() time.Time
}

// ProcessTask implements asynq.Handler.
func (p *DraftPurger) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	purged, err := p.Repo.PurgeBefore(ctx, now().Add(-p.MaxAge))
	if err != nil {
		logger.Error("Draft purge failed", zap.Error(err))
		return fmt.Errorf("purge drafts: %w", err)
	}
	if p.Metrics != nil {
		p.Metrics.AddDraftsPurged(purged)
	}
	logger.Info("Draft purge finished", zap.Int64("purged", purged))
	return nil
}

// Worker runs the periodic purge on asynq: a scheduler enqueues the task and a
// single-worker server processes it.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *zap.Logger
}

func redisOpt(cfg config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}

// NewWorker wires the purge task to the configured queue database.
func NewWorker(cfg config.Config, purger *DraftPurger, logger *zap.Logger) (*Worker, error) {
	opt := redisOpt(cfg)
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypeDraftPurge, purger)

	scheduler := asynq.NewScheduler(opt, nil)
	cronspec := fmt.Sprintf("@every %s", cfg.DraftPurgeInterval)
	// Unique keeps overlapping ticks from queueing a second purge.
	if _, err := scheduler.Register(cronspec, asynq.NewTask(TypeDraftPurge, nil), asynq.Unique(cfg.DraftPurgeInterval)); err != nil {
		return nil, fmt.Errorf("register %s: %w", TypeDraftPurge, err)
	}
	return &Worker{server: srv, scheduler: scheduler, mux: mux, logger: logger}, nil
}

// Start launches the server and the scheduler, retrying the server a few times when Redis is not ready.
func (w *Worker) Start() {
	go func() {
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.server.Start(w.mux)
			if err == nil {
				w.logger.Info("Draft purge worker started")
				return
			}
			w.logger.Warn("Draft purge worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
		w.logger.Error("Draft purge worker gave up; stale drafts will not be purged")
	}()

	if err := w.scheduler.Start(); err != nil {
		w.logger.Error("Draft purge scheduler failed to start", zap.Error(err))
	}
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}
