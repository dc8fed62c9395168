// Package feeder drives a connected gauge from the host: it polls a price,
// maps it onto the command byte range and keeps the dial up to date.
package feeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"gaugedrive/core"
	"gaugedrive/host/config"
	"gaugedrive/protocol"
)

// Source provides the value shown on the dial
type Source interface {
	Fetch(ctx context.Context) (float64, error)
}

// Sender delivers one command byte to the gauge and returns its echo
type Sender interface {
	Send(b byte) ([]byte, error)
}

// Feeder keeps a gauge in step with a value source
type Feeder struct {
	dev    Sender
	src    Source
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a feeder. src may be nil when only Send and Sweep are used.
func New(dev Sender, src Source, cfg *config.Config, logger *slog.Logger) *Feeder {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Feeder{
		dev:    dev,
		src:    src,
		cfg:    cfg,
		logger: logger,
	}
}

// Send writes one command byte and logs the echo
func (f *Feeder) Send(b byte) ([]byte, error) {
	echo, err := f.dev.Send(b)
	if err != nil {
		return echo, fmt.Errorf("send %#02x: %w", b, err)
	}
	f.logger.Debug("command echoed", "byte", b, "percent", protocol.PercentFromByte(b))
	return echo, nil
}

// SendPercent writes the command byte nearest to pct
func (f *Feeder) SendPercent(pct float64) ([]byte, error) {
	return f.Send(protocol.ByteFromPercent(pct))
}

// Tick fetches the current value once and moves the dial to it
func (f *Feeder) Tick(ctx context.Context) (byte, error) {
	if f.src == nil {
		return 0, fmt.Errorf("feeder: no value source")
	}

	value, err := f.src.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch value: %w", err)
	}

	b, err := protocol.ByteFromValue(value, f.cfg.Price.Min, f.cfg.Price.Max)
	if err != nil {
		return 0, err
	}

	if _, err := f.Send(b); err != nil {
		return b, err
	}
	f.logger.Info("gauge updated", "value", value, "byte", b, "percent", protocol.PercentFromByte(b))
	return b, nil
}

// poll runs Tick, retrying failures up to MaxRetries times within one slot
func (f *Feeder) poll(ctx context.Context) error {
	var err error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			f.logger.Warn("poll failed, retrying",
				"attempt", attempt,
				"delay", f.cfg.RetryDelay,
				"error", err)
			if serr := sleep(ctx, f.cfg.RetryDelay); serr != nil {
				return serr
			}
		}
		if _, err = f.Tick(ctx); err == nil {
			return nil
		}
	}
	return err
}

// Run polls on the configured schedule until ctx is cancelled. The first
// poll happens immediately; a poll still running when the next slot comes
// round causes that slot to be skipped.
func (f *Feeder) Run(ctx context.Context) error {
	schedule, err := ParseSchedule(f.cfg.Schedule)
	if err != nil {
		return err
	}

	logger := cronLogger{f.logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(schedule, cron.FuncJob(func() {
		if err := f.poll(ctx); err != nil && ctx.Err() == nil {
			f.logger.Error("poll failed", "error", err)
		}
	}))

	if err := f.poll(ctx); err != nil && ctx.Err() == nil {
		f.logger.Error("poll failed", "error", err)
	}

	c.Start()
	f.logger.Info("feeder running", "schedule", f.cfg.Schedule)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	f.logger.Info("feeder stopped")
	return nil
}

// Sweep runs the calibration sweep over serial for the given number of
// full up-and-down cycles; cycles <= 0 sweeps until ctx is cancelled.
// Consecutive steps that encode to the same byte are sent once.
func (f *Feeder) Sweep(ctx context.Context, cycles int) error {
	sweep := core.NewSweep(core.DefaultSweepConfig())

	limit := rate.Inf
	if f.cfg.Sweep.Rate > 0 {
		limit = rate.Limit(f.cfg.Sweep.Rate)
	}
	limiter := rate.NewLimiter(limit, 1)

	steps := cycles * sweep.Period()
	last := -1
	for i := 0; cycles <= 0 || i < steps; i++ {
		pct, pause := sweep.Next()

		if b := protocol.ByteFromPercent(pct); int(b) != last {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			if _, err := f.Send(b); err != nil {
				return err
			}
			last = int(b)
		}

		if pause {
			f.logger.Info("sweep mark", "percent", pct)
			if err := sleep(ctx, f.cfg.Sweep.Pause); err != nil {
				return err
			}
		}
	}
	return nil
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
