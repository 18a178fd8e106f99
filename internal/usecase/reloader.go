package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	applogger "IndexScope/pkg/logger"
)

// Reloader runs the store loader on a cron schedule (six fields, seconds first).
type Reloader struct {
	cron    *cron.Cron
	loader  *StoreLoader
	timeout time.Duration
	l       *applogger.Logger
}

func NewReloader(loader *StoreLoader, timeout time.Duration, l *applogger.Logger) *Reloader {
	if l == nil {
		l = applogger.Nop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Reloader{
		cron:    cron.New(cron.WithSeconds()),
		loader:  loader,
		timeout: timeout,
		l:       l,
	}
}

// Schedule registers the reload job. An empty spec leaves the reloader idle.
func (r *Reloader) Schedule(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return fmt.Errorf("register reload %q: %w", spec, err)
	}
	r.l.Info("store reload scheduled", applogger.String("cron", spec))
	return nil
}

// Entries reports how many jobs are scheduled.
func (r *Reloader) Entries() int { return len(r.cron.Entries()) }

func (r *Reloader) Start() { r.cron.Start() }

// Stop stops scheduling and waits for a running reload to finish or ctx to end.
func (r *Reloader) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		r.l.Warn("store reload still running at shutdown")
	}
}

func (r *Reloader) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if _, err := r.loader.Load(ctx); err != nil {
		r.l.Error("scheduled store reload failed", applogger.Error(err))
	}
}
