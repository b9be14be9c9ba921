package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled indica que o chamador desistiu (ctx cancelado ou timeout)
	// antes de ser admitido. O contador não é alterado.
	ErrCancelled = errors.New("admission cancelled")

	// ErrGateClosed indica que o gate foi fechado (shutdown do client).
	ErrGateClosed = errors.New("gate closed")

	// ErrInvalidConfig é o alvo de errors.Is para qualquer ConfigurationError.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ConfigurationError é retornado na construção, antes de qualquer goroutine subir.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrInvalidConfig }

// TransportError cobre falhas depois da admissão (serialização ou envio).
// A vaga já foi consumida e não é devolvida.
type TransportError struct {
	// Op é "serialize" ou "send".
	Op string
	// StatusCode é o status recebido do endpoint, ou 0 se não houve resposta.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("transport %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("transport %s: unexpected status %d", e.Op, e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }
