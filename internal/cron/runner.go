package cronrunner

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled unit of work. Errors are logged, not retried.
type Job func(ctx context.Context) error

// Runner schedules background jobs on a six-field (seconds first) cron spec.
// A job that is still running when its next tick fires is skipped.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add registers job under name. A positive timeout bounds each run.
func (r *Runner) Add(name, spec string, timeout time.Duration, job Job) (cron.EntryID, error) {
	if job == nil {
		return 0, fmt.Errorf("cron job %q: nil func", name)
	}
	id, err := r.cron.AddFunc(spec, func() { r.run(name, timeout, job) })
	if err != nil {
		return 0, fmt.Errorf("cron job %q: %w", name, err)
	}
	r.logger.Info("cron job registered", zap.String("job", name), zap.String("spec", spec))
	return id, nil
}

func (r *Runner) run(name string, timeout time.Duration, job Job) {
	ctx := r.baseCtx
	if ctx.Err() != nil {
		return
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("cron job panicked", zap.String("job", name), zap.Any("panic", rec))
		}
	}()
	start := time.Now()
	if err := job(ctx); err != nil {
		r.logger.Warn("cron job failed", zap.String("job", name), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return
	}
	r.logger.Debug("cron job done", zap.String("job", name), zap.Duration("elapsed", time.Since(start)))
}

func (r *Runner) Len() int { return len(r.cron.Entries()) }

func (r *Runner) Start() {
	r.logger.Info("cron started")
	r.cron.Start()
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("cron stopped")
}
