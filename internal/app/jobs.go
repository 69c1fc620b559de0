package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// warmTimeout bounds one scheduled catalog refresh.
const warmTimeout = time.Minute

const sessionSweepSpec = "@every 1m"

func (a *Application) initJobs() error {
	a.sched = cron.New(cron.WithParser(cronParser))
	if _, err := a.sched.AddFunc(sessionSweepSpec, a.SchedSessionSweepTask); err != nil {
		zap.L().Error("init job error", zap.String("spec", sessionSweepSpec), zap.Error(err))
		return err
	}
	if a.cfg.CatalogWarmSpec == "" {
		return nil
	}
	if _, err := a.sched.AddFunc(a.cfg.CatalogWarmSpec, a.SchedCatalogWarmTask); err != nil {
		zap.L().Error("init job error", zap.String("spec", a.cfg.CatalogWarmSpec), zap.Error(err))
		return err
	}
	return nil
}

// StartJobs starts the scheduler.
func (a *Application) StartJobs() {
	a.sched.Start()
}

// WarmUp loads every stale or empty collection once.
func (a *Application) WarmUp(ctx context.Context) error {
	start := time.Now()
	err := a.store.RefreshAll(ctx, false)
	if err != nil {
		zap.L().Warn("catalog warm-up incomplete", zap.Error(err))
		return err
	}
	zap.L().Info("catalog warmed", zap.Duration("took", time.Since(start)))
	return nil
}

// SchedCatalogWarmTask force-refreshes every collection. Failures keep the
// previous data and are only logged.
func (a *Application) SchedCatalogWarmTask() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()
	if err := a.store.RefreshAll(ctx, true); err != nil {
		zap.L().Warn("scheduled catalog refresh failed, keeping cached data", zap.Error(err))
	}
}

// SchedSessionSweepTask closes preference sessions that have been idle past
// the configured timeout.
func (a *Application) SchedSessionSweepTask() {
	if n := a.sessions.EvictIdle(); n > 0 {
		zap.L().Debug("closed idle preference sessions", zap.Int("count", n), zap.Int("open", a.sessions.Len()))
	}
}
