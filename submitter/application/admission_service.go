package application

import (
	"context"
	"time"

	"document-gateway/submitter/domain"
)

// AdmissionService concentra a regra de espera no gate com timeout,
// sem saber nada sobre transporte.
type AdmissionService struct {
	Gate           domain.Gate
	AcquireTimeout time.Duration
}

// Acquire espera uma vaga no período corrente.
// - Se `AcquireTimeout <= 0`, espera indefinidamente (até ctx cancelar).
// - Se `AcquireTimeout > 0`, espera até o timeout.
// Erro casa com domain.ErrCancelled (ou domain.ErrGateClosed); nesse caso nenhuma vaga foi consumida.
func (s AdmissionService) Acquire(ctx context.Context) error {
	if s.Gate == nil {
		return nil
	}

	if s.AcquireTimeout <= 0 {
		return s.Gate.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Gate.Acquire(acqCtx)
}
