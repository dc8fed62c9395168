package feeder

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ParseSchedule accepts a cron expression with optional seconds, a
// descriptor such as "@every 5s", or a plain duration like "30s".
func ParseSchedule(expr string) (cron.Schedule, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty schedule")
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if sched, err := parser.Parse(expr); err == nil {
		return sched, nil
	}

	d, err := time.ParseDuration(expr)
	if err != nil {
		return nil, fmt.Errorf("not a valid cron expression or duration: %q", expr)
	}
	if d <= 0 {
		return nil, fmt.Errorf("duration must be positive: %q", expr)
	}
	return constantDelay(d), nil
}

// constantDelay fires at a fixed interval, including sub-second ones
type constantDelay time.Duration

func (d constantDelay) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

// cronLogger routes cron's own logging into slog
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
