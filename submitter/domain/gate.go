package domain

// Camada de domínio da admissão.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "context"

// Gate representa o portão de admissão compartilhado por vários chamadores.
//
// A semântica é: Acquire bloqueia enquanto o orçamento do período estiver esgotado
// e retorna nil quando a admissão foi concedida. Não existe "release": a capacidade
// só volta quando o relógio de reset zera o contador.
type Gate interface {
	Acquire(ctx context.Context) error
}

// Clock é o relógio em background que zera o contador do Gate.
// Stop pode ser chamado mais de uma vez.
type Clock interface {
	Stop()
}
