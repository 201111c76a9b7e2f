package broadcast

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/bantay-ph/bantay-api/internal/pkg/cache"
	"github.com/bantay-ph/bantay-api/internal/pkg/env"
)

const sweepLockKey = "broadcast:sweep:lock"

// systemActor marks history entries written by the sweeper rather than a
// person.
const systemActor uint = 0

// Sweeper periodically publishes reports whose schedule has come due. Sweep
// granularity bounds the delivery latency of a scheduled publish; there is
// no exact-time guarantee. A redis lock keeps concurrent instances from
// double-publishing the same batch.
type Sweeper struct {
	scheduler *Scheduler
	interval  time.Duration
	stop      chan struct{}
	done      chan struct{}
}

// NewSweeper builds a sweeper with the interval from BROADCAST_SWEEP_INTERVAL
// (Go duration string, default 1h).
func NewSweeper(scheduler *Scheduler) *Sweeper {
	interval, err := time.ParseDuration(env.GetEnv("BROADCAST_SWEEP_INTERVAL", "1h"))
	if err != nil || interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		scheduler: scheduler,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine. An immediate first
// sweep catches schedules that came due while the process was down.
func (w *Sweeper) Start() {
	log.Infof("[Sweeper] starting, interval %s", w.interval)
	go w.run()
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (w *Sweeper) Stop() {
	close(w.stop)
	<-w.done
	log.Info("[Sweeper] stopped")
}

func (w *Sweeper) run() {
	defer close(w.done)

	w.Sweep(context.Background())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.Sweep(context.Background())
		case <-w.stop:
			return
		}
	}
}

// Sweep publishes every due schedule once. Errors on individual reports are
// logged and skipped; the next sweep retries them because the schedule is
// only cleared by a successful publish.
func (w *Sweeper) Sweep(ctx context.Context) {
	acquired, err := cache.SetNX(sweepLockKey, "1", w.interval/2)
	if err != nil {
		log.Warnf("[Sweeper] lock acquisition failed, sweeping anyway: %v", err)
	} else if !acquired {
		log.Debug("[Sweeper] another instance holds the sweep lock")
		return
	}

	now := time.Now()
	due, err := w.scheduler.reports.DuePublishSchedules(now)
	if err != nil {
		log.Errorf("[Sweeper] due schedule query failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}
	log.Infof("[Sweeper] %d scheduled publish(es) due", len(due))

	for _, report := range due {
		// Consent may have been withdrawn after scheduling; the schedule
		// dies with it.
		if !report.BroadcastConsent {
			log.Warnf("[Sweeper] consent withdrawn for case %s, dropping schedule", report.CaseNumber)
			if err := w.scheduler.reports.ClearSchedule(report.ID); err != nil {
				log.Errorf("[Sweeper] failed to clear schedule for case %s: %v", report.CaseNumber, err)
			}
			continue
		}

		channels := splitChannels(report.PublishChannels)
		if len(channels) == 0 {
			log.Warnf("[Sweeper] case %s has a schedule but no channels, clearing", report.CaseNumber)
			if err := w.scheduler.reports.ClearSchedule(report.ID); err != nil {
				log.Errorf("[Sweeper] failed to clear schedule for case %s: %v", report.CaseNumber, err)
			}
			continue
		}

		if _, err := w.scheduler.publishNow(ctx, systemActor, &report, channels, triggerSweep); err != nil {
			log.Errorf("[Sweeper] publish failed for case %s: %v", report.CaseNumber, err)
			continue
		}
		if err := w.scheduler.reports.ClearSchedule(report.ID); err != nil {
			log.Errorf("[Sweeper] failed to clear schedule for case %s: %v", report.CaseNumber, err)
		}
	}
}

func splitChannels(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
