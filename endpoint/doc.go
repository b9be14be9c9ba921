// Package endpoint é um stub local do endpoint de criação de documentos.
//
// Serve para rodar o submitter sem tocar no ambiente real (cmd/sandbox) e para
// testes de ponta a ponta com httptest. Ele imita o comportamento relevante do
// lado servidor:
//
//   - Handler: aceita POST com um domain.Document em JSON e responde {"value": "<uuid>"}
//   - Limit: quota por chave (assinatura ou IP) com token bucket de x/time/rate;
//     acima da quota responde 429 com Retry-After
//   - InFlight: limite de requisições simultâneas, responde 503 quando lotado
//   - FailEvery: falha 1 a cada N documentos com 500, para exercitar o caminho de erro
package endpoint
