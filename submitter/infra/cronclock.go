package infra

import (
	"fmt"
	"sync"

	"document-gateway/submitter/domain"

	"github.com/robfig/cron/v3"
)

// CronResetClock é a alternativa ao ResetClock para janelas alinhadas ao relógio
// de parede, ex: "* * * * *" zera no início de cada minuto.
//
// Aceita a sintaxe padrão de 5 campos e descritores (@every 30s, @hourly, ...).
// Também dispara um tick imediato no start.
type CronResetClock struct {
	schedule string
	cron     *cron.Cron
	stopOnce sync.Once
}

func StartCronResetClock(schedule string, reset func(), opts ...ClockOption) (*CronResetClock, error) {
	if reset == nil {
		return nil, &domain.ConfigurationError{Field: "reset", Reason: "must not be nil"}
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, &domain.ConfigurationError{
			Field:  "reset_schedule",
			Reason: fmt.Sprintf("invalid cron schedule %q: %v", schedule, err),
		}
	}

	cfg := newClockConfig(opts)
	tick := newResetTick(reset, cfg)

	c := &CronResetClock{
		schedule: schedule,
		cron:     cron.New(),
	}
	if _, err := c.cron.AddFunc(schedule, func() { tick.run() }); err != nil {
		return nil, fmt.Errorf("failed to schedule reset: %w", err)
	}

	tick.run()
	c.cron.Start()
	cfg.logger.Info("cron reset clock started", "schedule", schedule)
	return c, nil
}

func (c *CronResetClock) Schedule() string { return c.schedule }

// Stop para o cron e espera algum reset em andamento terminar.
func (c *CronResetClock) Stop() {
	c.stopOnce.Do(func() {
		ctx := c.cron.Stop()
		<-ctx.Done()
	})
}

var _ domain.Clock = (*CronResetClock)(nil)
