package infra

import (
	"context"

	"document-gateway/submitter/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusStatsStore exporta os desfechos como métricas.
// Não usa RequestID como label (cardinalidade).
type PrometheusStatsStore struct {
	submissions *prometheus.CounterVec
	statusCodes *prometheus.CounterVec
	waitSeconds prometheus.Histogram
}

// NewPrometheusStatsStore registra as métricas em reg. Use um registry próprio
// por client para não colidir quando houver mais de um gate no processo.
func NewPrometheusStatsStore(reg prometheus.Registerer) *PrometheusStatsStore {
	factory := promauto.With(reg)
	return &PrometheusStatsStore{
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "document_submitter_submissions_total",
				Help: "Total number of document submissions by outcome",
			},
			[]string{"outcome"},
		),
		statusCodes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "document_submitter_responses_total",
				Help: "Total number of endpoint responses by status class",
			},
			[]string{"class"},
		),
		waitSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "document_submitter_gate_wait_seconds",
				Help:    "Time callers spent blocked in the rate gate",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
			},
		),
	}
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.submissions.WithLabelValues(string(ev.Status)).Inc()
	if ev.StatusCode != 0 {
		s.statusCodes.WithLabelValues(statusLabel(ev.StatusCode)).Inc()
	}
	s.waitSeconds.Observe(ev.Waited.Seconds())
	return nil
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "other"
	}
}
