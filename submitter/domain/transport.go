package domain

import (
	"context"
	"time"
)

// Request é o que o Transport recebe de um chamador já admitido.
type Request struct {
	RequestID string
	Payload   []byte
	// Signature é repassada sem validação; autenticação fica fora deste módulo.
	Signature string
}

// Response é o mínimo que o Transport precisa reportar.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport faz a chamada de rede de fato (HTTP, fake em teste, etc.).
type Transport interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// Serializer converte o documento no payload enviado ao endpoint.
type Serializer interface {
	Serialize(v any) ([]byte, error)
}

type OutcomeStatus string

const (
	OutcomeSuccess        OutcomeStatus = "success"
	OutcomeRejected       OutcomeStatus = "rejected"
	OutcomeTransportError OutcomeStatus = "transport_error"
	OutcomeCancelled      OutcomeStatus = "cancelled"
)

// Outcome é o resultado tipado de uma submissão.
type Outcome struct {
	RequestID  string
	Status     OutcomeStatus
	StatusCode int
	Body       []byte
	// Waited é quanto tempo o chamador ficou bloqueado no gate.
	Waited time.Duration
}

// Admitted diz se a submissão consumiu uma vaga do período.
func (o Outcome) Admitted() bool {
	return o.Status != "" && o.Status != OutcomeCancelled
}

func (o Outcome) OK() bool { return o.Status == OutcomeSuccess }
