package infra

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

type clockConfig struct {
	logger *slog.Logger
	// logEvery limita o log de "counter reset" (períodos curtos geram muito ruído).
	logEvery time.Duration
}

type ClockOption func(*clockConfig)

func WithClockLogger(l *slog.Logger) ClockOption {
	return func(c *clockConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithClockLogEvery(d time.Duration) ClockOption {
	return func(c *clockConfig) { c.logEvery = d }
}

func newClockConfig(opts []ClockOption) clockConfig {
	c := clockConfig{
		logger:   slog.Default().With("component", "submitter.clock"),
		logEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// resetTick executa a função de reset isolando panics: um tick ruim não derruba os próximos.
type resetTick struct {
	reset  func()
	logger *slog.Logger
	logs   *rate.Sometimes
}

func newResetTick(reset func(), cfg clockConfig) *resetTick {
	return &resetTick{
		reset:  reset,
		logger: cfg.logger,
		logs:   &rate.Sometimes{First: 1, Interval: cfg.logEvery},
	}
}

func (t *resetTick) run() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("reset tick failed", "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	t.reset()
	t.logs.Do(func() { t.logger.Debug("usage counter reset") })
	return true
}
