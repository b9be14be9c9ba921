// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - RateGate: contador + lock + broadcast, bloqueia quem excede o limite do período
//   - ResetClock / CronResetClock: zeram o contador periodicamente
//   - HTTPTransport / JSONSerializer: envio do documento
//   - Stats: memória, Redis, SQLite e Prometheus
package infra
