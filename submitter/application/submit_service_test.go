package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"document-gateway/submitter/domain"
)

type fakeSerializer struct {
	err error
}

func (f fakeSerializer) Serialize(v any) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`{"doc_id":"DOC123"}`), nil
}

type fakeTransport struct {
	status int
	err    error
	calls  []domain.Request
}

func (f *fakeTransport) Send(_ context.Context, req domain.Request) (domain.Response, error) {
	f.calls = append(f.calls, req)
	return domain.Response{StatusCode: f.status}, f.err
}

type recordingStats struct {
	events []domain.StatsEvent
	err    error
}

func (r *recordingStats) Record(_ context.Context, ev domain.StatsEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

func newService(gate domain.Gate, tr *fakeTransport, stats domain.StatsStore) SubmitService {
	return SubmitService{
		Admission:  AdmissionService{Gate: gate},
		Serializer: fakeSerializer{},
		Transport:  tr,
		Stats:      stats,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		RequestID:  func() string { return "req-1" },
	}
}

func TestSubmitService_Success(t *testing.T) {
	gate := &countingGate{}
	tr := &fakeTransport{status: 200}
	stats := &recordingStats{}

	out, err := newService(gate, tr, stats).Submit(context.Background(), struct{}{}, "sig")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.OK() || out.StatusCode != 200 || out.RequestID != "req-1" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(tr.calls) != 1 || tr.calls[0].Signature != "sig" || string(tr.calls[0].Payload) != `{"doc_id":"DOC123"}` {
		t.Fatalf("unexpected transport calls %+v", tr.calls)
	}
	if len(stats.events) != 1 || stats.events[0].Status != domain.OutcomeSuccess {
		t.Fatalf("unexpected stats %+v", stats.events)
	}
}

func TestSubmitService_Non200ConsumesSlotAndReturnsTransportError(t *testing.T) {
	gate := &countingGate{}
	tr := &fakeTransport{status: 500}

	out, err := newService(gate, tr, nil).Submit(context.Background(), struct{}{}, "")
	var terr *domain.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.StatusCode != 500 || terr.Op != "send" {
		t.Fatalf("unexpected transport error %+v", terr)
	}
	if out.Status != domain.OutcomeRejected || !out.Admitted() {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if gate.acquired != 1 {
		t.Fatalf("expected one admission, got %d", gate.acquired)
	}
}

func TestSubmitService_TransportErrorConsumesSlot(t *testing.T) {
	gate := &countingGate{}
	boom := errors.New("connection refused")
	tr := &fakeTransport{err: boom}

	out, err := newService(gate, tr, nil).Submit(context.Background(), struct{}{}, "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	if out.Status != domain.OutcomeTransportError || gate.acquired != 1 {
		t.Fatalf("unexpected outcome %+v (acquired=%d)", out, gate.acquired)
	}
}

func TestSubmitService_SerializeErrorSkipsTransport(t *testing.T) {
	gate := &countingGate{}
	tr := &fakeTransport{status: 200}
	svc := newService(gate, tr, nil)
	svc.Serializer = fakeSerializer{err: errors.New("bad doc")}

	_, err := svc.Submit(context.Background(), struct{}{}, "")
	var terr *domain.TransportError
	if !errors.As(err, &terr) || terr.Op != "serialize" {
		t.Fatalf("expected serialize TransportError, got %v", err)
	}
	if len(tr.calls) != 0 {
		t.Fatalf("transport must not be called")
	}
	if gate.acquired != 1 {
		t.Fatalf("expected slot consumed, got %d", gate.acquired)
	}
}

func TestSubmitService_CancelledNeverReachesTransport(t *testing.T) {
	tr := &fakeTransport{status: 200}
	stats := &recordingStats{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := newService(&blockingGate{}, tr, stats).Submit(ctx, struct{}{}, "")
	if !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if out.Admitted() {
		t.Fatalf("cancelled submission must not count as admitted")
	}
	if len(tr.calls) != 0 {
		t.Fatalf("transport must not be called")
	}
	if len(stats.events) != 1 || stats.events[0].Status != domain.OutcomeCancelled {
		t.Fatalf("expected cancelled stats event, got %+v", stats.events)
	}
}

func TestSubmitService_StatsErrorIsBestEffort(t *testing.T) {
	tr := &fakeTransport{status: 200}
	stats := &recordingStats{err: errors.New("redis down")}

	if _, err := newService(&countingGate{}, tr, stats).Submit(context.Background(), struct{}{}, ""); err != nil {
		t.Fatalf("stats failure must not fail the submission: %v", err)
	}
}
