package infra

import (
	"context"
	"fmt"
	"sync"

	"document-gateway/submitter/domain"
)

// RateGate admite no máximo `limit` chamadores entre dois resets.
//
// Quem chega com o orçamento esgotado fica bloqueado até o próximo Reset
// (ou até o ctx encerrar). Não há ordem FIFO entre os que esperam: depois de um
// broadcast, qualquer um pode passar e os demais voltam a esperar.
type RateGate struct {
	limit int // imutável depois do NewRateGate

	// protegidos por mu
	mu     sync.Mutex
	used   int
	wake   chan struct{} // fechado e trocado a cada broadcast
	closed bool
}

// NewRateGate cria um gate com o limite informado. limit precisa ser > 0.
func NewRateGate(limit int) (*RateGate, error) {
	if limit <= 0 {
		return nil, &domain.ConfigurationError{Field: "limit", Reason: "must be > 0"}
	}
	return &RateGate{
		limit: limit,
		wake:  make(chan struct{}),
	}, nil
}

func (g *RateGate) Limit() int { return g.limit }

// Acquire implementa domain.Gate.
func (g *RateGate) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}

	g.mu.Lock()
	for !g.closed && g.used >= g.limit {
		wake := g.wake
		g.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			// sinaliza na saída para ninguém ficar preso por causa desta desistência
			g.broadcast()
			return cancelled(ctx.Err())
		}

		g.mu.Lock()
	}
	if g.closed {
		g.mu.Unlock()
		return domain.ErrGateClosed
	}

	g.used++
	g.broadcastLocked()
	g.mu.Unlock()
	return nil
}

// Reset zera o contador e acorda todos que estão esperando.
func (g *RateGate) Reset() {
	g.mu.Lock()
	g.used = 0
	g.broadcastLocked()
	g.mu.Unlock()
}

// Close libera todos os bloqueados com domain.ErrGateClosed.
// Chamadas seguintes de Acquire falham imediatamente.
func (g *RateGate) Close() {
	g.mu.Lock()
	if !g.closed {
		g.closed = true
		g.broadcastLocked()
	}
	g.mu.Unlock()
}

func (g *RateGate) broadcast() {
	g.mu.Lock()
	g.broadcastLocked()
	g.mu.Unlock()
}

// broadcastLocked: caller must hold g.mu.
func (g *RateGate) broadcastLocked() {
	close(g.wake)
	g.wake = make(chan struct{})
}

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", domain.ErrCancelled, cause)
}
