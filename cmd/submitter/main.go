package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"document-gateway/submitter"
	"document-gateway/submitter/domain"
	"document-gateway/submitter/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// submitter envia os documentos JSON passados como argumento (ou lidos do stdin)
// respeitando RATE_LIMIT chamadas por RATE_PERIOD.
func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(newLogger(cfg.logLevel))

	docs, err := loadDocuments(os.Args[1:], os.Stdin)
	if err != nil {
		log.Fatalf("documents: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := submitAll(ctx, cfg, docs); err != nil {
		cancel()
		log.Fatalf("%v", err)
	}
}

// submitAll monta stats e client, envia os documentos e registra o resumo.
// Erros voltam para main depois que os defers daqui já rodaram.
func submitAll(ctx context.Context, cfg config, docs []domain.Document) error {
	memStats := infra.NewMemoryStatsStore()
	stats := infra.MultiStatsStore{memStats}

	if cfg.hasBackend("redis") {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			return fmt.Errorf("redis stats ping error: %w", err)
		}
		stats = append(stats, infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
		))
	}

	if cfg.hasBackend("sqlite") {
		journal, err := infra.NewSQLiteStatsStore(cfg.statsSQLitePath)
		if err != nil {
			return fmt.Errorf("sqlite stats error: %w", err)
		}
		defer func() { _ = journal.Close() }()
		stats = append(stats, journal)
	}

	if cfg.hasBackend("prometheus") {
		reg := prometheus.NewRegistry()
		stats = append(stats, infra.NewPrometheusStatsStore(reg))
		if cfg.metricsAddr != "" {
			srv := serveMetrics(cfg.metricsAddr, reg)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}
	}

	client, err := submitter.NewClient(submitter.Options{
		Limit:          cfg.rateLimit,
		Period:         cfg.ratePeriod,
		ResetSchedule:  cfg.resetSchedule,
		AcquireTimeout: cfg.acquireTimeout,
		Endpoint:       cfg.submitURL,
		HTTPClient:     &http.Client{Timeout: cfg.httpTimeout},
		Stats:          stats,
	})
	if err != nil {
		return fmt.Errorf("client error: %w", err)
	}
	defer func() { _ = client.Close() }()

	log.Printf("submitter -> %s", cfg.submitURL)
	log.Printf("rate: limit=%d period=%s schedule=%q acquireTimeout=%s", cfg.rateLimit, cfg.ratePeriod, cfg.resetSchedule, cfg.acquireTimeout)
	log.Printf("jobs: documents=%d repeat=%d workers=%d stats=%v", len(docs), cfg.repeat, cfg.workers, cfg.statsBackends)

	run(ctx, client, docs, cfg)

	total := memStats.Total()
	log.Printf("done: success=%d rejected=%d transportError=%d cancelled=%d maxWait=%s",
		total.Success, total.Rejected, total.TransportError, total.Cancelled, memStats.MaxWait())
	return nil
}

// run distribui repeat x docs entre os workers; a cadência fica por conta do gate.
// Termina quando a fila acaba, quando ctx encerra ou quando o client é fechado.
func run(ctx context.Context, client *submitter.Client, docs []domain.Document, cfg config) {
	jobs := make(chan domain.Document)
	stop := make(chan struct{})
	var stopOnce sync.Once

	var wg sync.WaitGroup
	for i := 0; i < cfg.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				out, err := client.SubmitDocument(ctx, doc, cfg.signature)
				switch {
				case err == nil:
					slog.Info("submitted", "doc_id", doc.DocID, "request_id", out.RequestID,
						"status", out.StatusCode, "waited", out.Waited)
				case ctx.Err() != nil, errors.Is(err, domain.ErrGateClosed):
					stopOnce.Do(func() { close(stop) })
					return
				case errors.Is(err, domain.ErrCancelled):
					// ACQUIRE_TIMEOUT estourou: pula o documento e segue com a fila
					slog.Warn("submission skipped", "doc_id", doc.DocID, "request_id", out.RequestID, "error", err)
				default:
					slog.Warn("submission failed", "doc_id", doc.DocID, "request_id", out.RequestID, "error", err)
				}
			}
		}()
	}

feed:
	for r := 0; r < cfg.repeat; r++ {
		for _, doc := range docs {
			select {
			case jobs <- doc:
			case <-ctx.Done():
				break feed
			case <-stop:
				break feed
			}
		}
	}
	close(jobs)
	wg.Wait()
}

func loadDocuments(paths []string, stdin io.Reader) ([]domain.Document, error) {
	if len(paths) == 0 {
		doc, err := decodeDocument(stdin)
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return []domain.Document{doc}, nil
	}

	docs := make([]domain.Document, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		doc, err := decodeDocument(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func decodeDocument(r io.Reader) (domain.Document, error) {
	var doc domain.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return domain.Document{}, err
	}
	if doc.DocID == "" {
		return domain.Document{}, errors.New("doc_id is required")
	}
	return doc, nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
