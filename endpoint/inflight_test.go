package endpoint

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestInFlight_TimesOutWhenNoSlot(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once

	// handler que segura a vaga até liberarmos.
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedOnce.Do(func() { close(started) })
		<-release
		w.WriteHeader(http.StatusOK)
	})

	h := InFlight(InFlightOptions{Max: 1, AcquireTimeout: 25 * time.Millisecond})(next)

	var wg sync.WaitGroup
	wg.Add(1)

	// request 1: ocupa o semáforo e fica pendurado
	go func() {
		defer wg.Done()
		w1 := httptest.NewRecorder()
		h.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "http://example"+CreatePath, nil))
		if w1.Code != http.StatusOK {
			t.Errorf("expected first request 200, got %d", w1.Code)
		}
	}()

	select {
	case <-started:
	case <-time.After(200 * time.Millisecond):
		close(release)
		wg.Wait()
		t.Fatalf("timeout waiting first request to start")
	}

	// request 2: falha por timeout ao tentar adquirir
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "http://example"+CreatePath, nil))
	if w2.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected second request 503, got %d", w2.Code)
	}

	close(release)
	wg.Wait()

	// com a vaga livre, passa de novo
	w3 := httptest.NewRecorder()
	h.ServeHTTP(w3, httptest.NewRequest(http.MethodPost, "http://example"+CreatePath, nil))
	if w3.Code != http.StatusOK {
		t.Fatalf("expected third request 200, got %d", w3.Code)
	}
}

func TestInFlight_DisabledWhenMaxIsZero(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	w := httptest.NewRecorder()
	InFlight(InFlightOptions{})(next).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "http://example/", nil))
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected pass-through, got %d", w.Code)
	}
}
