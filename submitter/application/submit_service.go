package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"document-gateway/submitter/domain"
)

const statusOK = 200

// SubmitService executa uma submissão: admissão → serialização → transporte.
//
// A vaga é consumida na admissão; falha de serialização ou de transporte
// (inclusive status != 200) não devolve capacidade.
type SubmitService struct {
	Admission  AdmissionService
	Serializer domain.Serializer
	Transport  domain.Transport
	Stats      domain.StatsStore
	Logger     *slog.Logger
	// RequestID gera o id de cada submissão. Nil deixa o id vazio.
	RequestID func() string
}

func (s SubmitService) Submit(ctx context.Context, payload any, signature string) (domain.Outcome, error) {
	out := domain.Outcome{}
	if s.RequestID != nil {
		out.RequestID = s.RequestID()
	}

	start := time.Now()
	err := s.Admission.Acquire(ctx)
	out.Waited = time.Since(start)
	if err != nil {
		out.Status = domain.OutcomeCancelled
		s.record(ctx, out)
		return out, err
	}

	if s.Serializer == nil || s.Transport == nil {
		out.Status = domain.OutcomeTransportError
		s.record(ctx, out)
		return out, &domain.TransportError{Op: "send", Err: errors.New("no transport configured")}
	}

	body, err := s.Serializer.Serialize(payload)
	if err != nil {
		out.Status = domain.OutcomeTransportError
		s.record(ctx, out)
		s.logger().Warn("document serialization failed", "request_id", out.RequestID, "error", err)
		return out, &domain.TransportError{Op: "serialize", Err: err}
	}

	resp, err := s.Transport.Send(ctx, domain.Request{
		RequestID: out.RequestID,
		Payload:   body,
		Signature: signature,
	})
	out.StatusCode = resp.StatusCode
	out.Body = resp.Body

	var terr error
	switch {
	case err != nil:
		out.Status = domain.OutcomeTransportError
		terr = &domain.TransportError{Op: "send", StatusCode: resp.StatusCode, Err: err}
		s.logger().Warn("document submission failed", "request_id", out.RequestID, "error", err)
	case resp.StatusCode != statusOK:
		out.Status = domain.OutcomeRejected
		terr = &domain.TransportError{Op: "send", StatusCode: resp.StatusCode}
		s.logger().Warn("document rejected", "request_id", out.RequestID, "status", resp.StatusCode)
	default:
		out.Status = domain.OutcomeSuccess
		s.logger().Debug("document submitted", "request_id", out.RequestID, "waited", out.Waited)
	}

	s.record(ctx, out)
	return out, terr
}

// record é best-effort: erro de stats só vai para o log.
func (s SubmitService) record(ctx context.Context, out domain.Outcome) {
	if s.Stats == nil {
		return
	}
	ev := domain.StatsEvent{
		RequestID:  out.RequestID,
		Status:     out.Status,
		StatusCode: out.StatusCode,
		Waited:     out.Waited,
		At:         time.Now(),
	}
	// o ctx do chamador pode já estar cancelado (ex: OutcomeCancelled)
	if err := s.Stats.Record(context.WithoutCancel(ctx), ev); err != nil {
		s.logger().Warn("stats record failed", "request_id", out.RequestID, "error", err)
	}
}

func (s SubmitService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
