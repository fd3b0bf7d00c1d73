package schedule

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jan112121/attendance-backend/config"
	"github.com/jan112121/attendance-backend/models"
	"github.com/jan112121/attendance-backend/session"
)

// Scheduler fires the reconciler and archiver at their configured times in
// the canonical timezone. SkipIfStillRunning guarantees a job never
// overlaps itself.
type Scheduler struct {
	cron *cron.Cron
}

func Start(cfg *config.Config, resolver *session.Resolver, rec *Reconciler, arch *Archiver) (*Scheduler, error) {
	logger := cron.PrintfLogger(log.Default())
	c := cron.New(
		cron.WithLocation(resolver.Location()),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	timeout := cfg.JobTimeout

	sweep := func(sess string) func() {
		return func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			now := time.Now()
			date := resolver.Date(now)
			if _, err := rec.Run(ctx, date, sess, now); err != nil {
				log.Printf("[cron] %s sweep for %s failed: %v", sess, date, err)
			}
		}
	}

	if _, err := c.AddFunc(cfg.CronMorningSweep, sweep(models.SessionMorning)); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(cfg.CronAfternoonSweep, sweep(models.SessionAfternoon)); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(cfg.CronDailyArchive, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		yesterday := resolver.Date(time.Now().AddDate(0, 0, -1))
		if _, err := arch.Run(ctx, yesterday); err != nil {
			log.Printf("[cron] archive for %s failed: %v", yesterday, err)
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("scheduler started (tz=%s, sweeps=%q/%q, archive=%q)",
		resolver.Location(), cfg.CronMorningSweep, cfg.CronAfternoonSweep, cfg.CronDailyArchive)
	return &Scheduler{cron: c}, nil
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
