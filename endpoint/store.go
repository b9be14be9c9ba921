package endpoint

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// QuotaStore guarda um token bucket (x/time/rate) por chave,
// com limpeza periódica das chaves inativas.
type QuotaStore struct {
	mu           sync.Mutex
	entries      map[string]*quotaEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type quotaEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type QuotaOption func(*QuotaStore)

func WithIdleTTL(d time.Duration) QuotaOption {
	return func(s *QuotaStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) QuotaOption {
	return func(s *QuotaStore) { s.cleanupEvery = d }
}

func NewQuotaStore(rps float64, burst int, opts ...QuotaOption) *QuotaStore {
	s := &QuotaStore{
		entries:      make(map[string]*quotaEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *QuotaStore) RPS() float64 { return float64(s.rps) }
func (s *QuotaStore) Burst() int   { return s.burst }

// Allow consome um token da chave. Quando não há token, retorna em quanto tempo
// haverá um (0 se nunca, ex: burst=0).
func (s *QuotaStore) Allow(key string) (bool, time.Duration) {
	r := s.limiter(key).Reserve()
	if !r.OK() {
		return false, 0
	}
	delay := r.Delay()
	if delay == 0 {
		return true, 0
	}
	// não queremos "agendar" a requisição: devolve o token reservado
	r.Cancel()
	return false, delay
}

// limiter devolve o bucket da chave, criando na primeira vez, e marca o uso.
func (s *QuotaStore) limiter(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		ent = &quotaEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = ent
	}
	ent.lastSeen = now
	return ent.lim
}

// Cleanup descarta as chaves sem uso há mais de idleTTL em relação a now
// e retorna quantas saíram.
func (s *QuotaStore) Cleanup(now time.Time) int {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// StartJanitor roda Cleanup a cada cleanupEvery até ctx encerrar.
func (s *QuotaStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}
	logger := slog.Default().With("component", "endpoint.quota")

	go func() {
		t := time.NewTicker(s.cleanupEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if n := s.Cleanup(now); n > 0 {
					logger.Debug("idle quota keys removed", "removed", n)
				}
			}
		}
	}()
}
