// Package domain define contratos e tipos de domínio do submitter de documentos.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar a regra de admissão
// (gate + relógio de reset) dos detalhes de transporte e persistência.
package domain
