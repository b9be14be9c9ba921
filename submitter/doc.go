// Package submitter fornece o client que envia documentos ao endpoint respeitando
// um limite de chamadas por período.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (Gate, Clock, Transport, Document, erros)
//   - application: casos de uso (admissão com timeout, submissão) sem net/http
//   - infra: implementações concretas (RateGate, relógios de reset, HTTP, stats)
//   - submitter (este pacote): wiring das camadas em um Client pronto para uso
//
// Fluxo de uma submissão:
//
//  1. Acquire no gate: passa se o contador < limite, senão bloqueia até o próximo reset
//  2. Incrementa o contador e solta o lock
//  3. Serializa e envia fora do lock; a vaga fica consumida mesmo se o envio falhar
//  4. Retorna um domain.Outcome tipado
//
// O contador só volta a zero pelo relógio (ResetClock, ou CronResetClock quando
// ResetSchedule é informado), nunca pelo término de uma chamada.
package submitter
