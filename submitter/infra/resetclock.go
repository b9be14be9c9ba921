package infra

import (
	"sync"
	"time"

	"document-gateway/submitter/domain"
)

// ResetClock chama reset imediatamente (ainda dentro do Start) e depois a cada
// `period`, numa goroutine dedicada.
type ResetClock struct {
	period time.Duration
	tick   *resetTick

	stopOnce sync.Once
	stopc    chan struct{}
	donec    chan struct{}
}

// StartResetClock valida os parâmetros antes de subir a goroutine.
// Pare com Stop.
func StartResetClock(period time.Duration, reset func(), opts ...ClockOption) (*ResetClock, error) {
	if period <= 0 {
		return nil, &domain.ConfigurationError{Field: "period", Reason: "must be > 0"}
	}
	if reset == nil {
		return nil, &domain.ConfigurationError{Field: "reset", Reason: "must not be nil"}
	}

	cfg := newClockConfig(opts)
	c := &ResetClock{
		period: period,
		tick:   newResetTick(reset, cfg),
		stopc:  make(chan struct{}),
		donec:  make(chan struct{}),
	}
	c.tick.run()
	cfg.logger.Info("reset clock started", "period", period)
	go c.loop()
	return c, nil
}

func (c *ResetClock) Period() time.Duration { return c.period }

func (c *ResetClock) loop() {
	defer close(c.donec)

	t := time.NewTicker(c.period)
	defer t.Stop()
	for {
		select {
		case <-c.stopc:
			return
		case <-t.C:
			c.tick.run()
		}
	}
}

// Stop cancela o timer e espera a goroutine terminar. Pode ser chamado mais de uma vez.
func (c *ResetClock) Stop() {
	c.stopOnce.Do(func() { close(c.stopc) })
	<-c.donec
}

var _ domain.Clock = (*ResetClock)(nil)
