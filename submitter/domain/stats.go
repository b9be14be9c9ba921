package domain

import (
	"context"
	"time"
)

// StatsEvent representa o desfecho de uma submissão.
//
// Observação: RequestID é útil para o journal (sqlite), mas não deve virar
// label/chave em Redis/Prometheus por causa de cardinalidade.
type StatsEvent struct {
	RequestID  string
	Status     OutcomeStatus
	StatusCode int
	Waited     time.Duration

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do submitter.
//
// Implementações podem armazenar em Redis, SQLite, Prometheus, memória, etc.
// O submitter trata erro como best-effort (não falha a submissão).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
