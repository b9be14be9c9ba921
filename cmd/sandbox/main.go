package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"document-gateway/endpoint"
)

// sandbox sobe um stub do endpoint de documentos para rodar o submitter localmente:
//
//	LISTEN_ADDR=:8081 go run ./cmd/sandbox
//	SUBMIT_URL=http://localhost:8081/api/v3/lk/documents/create RATE_LIMIT=5 RATE_PERIOD=1s go run ./cmd/submitter doc.json
func main() {
	addr := getenvDefault("LISTEN_ADDR", ":8081")
	rps := getenvFloatDefault("SANDBOX_RPS", 0)
	burst := getenvIntDefault("SANDBOX_BURST", 10)
	keyHeader := getenvDefault("SANDBOX_KEY_HEADER", "X-Signature")
	failEvery := getenvIntDefault("SANDBOX_FAIL_EVERY", 0)
	maxInFlight := getenvIntDefault("SANDBOX_MAX_INFLIGHT", 0)
	inFlightTimeout := getenvDurationDefault("SANDBOX_INFLIGHT_TIMEOUT", 0)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// SANDBOX_RPS=0 desliga a quota do lado do servidor
	var store *endpoint.QuotaStore
	if rps > 0 {
		store = endpoint.NewQuotaStore(rps, burst)
		store.StartJanitor(ctx)
	}

	docs := &endpoint.Handler{FailEvery: int64(failEvery)}

	h := http.Handler(docs)
	h = endpoint.InFlight(endpoint.InFlightOptions{
		Max:            maxInFlight,
		AcquireTimeout: inFlightTimeout,
	})(h)
	h = endpoint.Limit(endpoint.LimitOptions{
		Store:               store,
		KeyHeader:           keyHeader,
		AddRateLimitHeaders: true,
	})(h)

	mux := http.NewServeMux()
	mux.Handle(endpoint.CreatePath, h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("sandbox listening on %s%s", addr, endpoint.CreatePath)
	log.Printf("quota: rps=%.3f burst=%d keyHeader=%q failEvery=%d", rps, burst, keyHeader, failEvery)
	log.Printf("inflight: max=%d acquireTimeout=%s", maxInFlight, inFlightTimeout)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
	log.Printf("sandbox stopped: received=%d accepted=%d", docs.Received(), docs.Accepted())
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
