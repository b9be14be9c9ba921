package infra

import (
	"context"
	"sync"
	"time"

	"document-gateway/submitter/domain"
)

type Counters struct {
	Success        int64
	Rejected       int64
	TransportError int64
	Cancelled      int64
}

// Admitted soma tudo que consumiu vaga (inclusive falhas de transporte).
func (c Counters) Admitted() int64 {
	return c.Success + c.Rejected + c.TransportError
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e para o resumo impresso pelo cmd/submitter.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	byStatus map[int]int64
	maxWait  time.Duration
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{byStatus: make(map[int]int64)}
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Status {
	case domain.OutcomeSuccess:
		s.total.Success++
	case domain.OutcomeRejected:
		s.total.Rejected++
	case domain.OutcomeTransportError:
		s.total.TransportError++
	case domain.OutcomeCancelled:
		s.total.Cancelled++
	}
	if ev.StatusCode != 0 {
		s.byStatus[ev.StatusCode]++
	}
	if ev.Waited > s.maxWait {
		s.maxWait = ev.Waited
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByStatusCode() map[int]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]int64, len(s.byStatus))
	for k, v := range s.byStatus {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) MaxWait() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxWait
}
