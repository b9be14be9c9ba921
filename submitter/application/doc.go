// Package application contém os casos de uso do submitter: admissão no gate
// (com timeout opcional) e a submissão do documento.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: SubmitService.Submit(ctx, doc, sig) retorna um Outcome tipado.
package application
