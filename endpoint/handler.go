package endpoint

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"document-gateway/submitter/domain"

	"github.com/google/uuid"
)

// CreatePath é o caminho do endpoint real, reproduzido pelo stub.
const CreatePath = "/api/v3/lk/documents/create"

const maxDocumentBody = 4 << 20

// Handler aceita documentos e responde com um id gerado.
type Handler struct {
	// FailEvery > 0 faz 1 a cada N documentos válidos responder 500.
	FailEvery int64
	Logger    *slog.Logger

	received atomic.Int64
	accepted atomic.Int64
}

type createResponse struct {
	Value string `json:"value"`
}

type errorResponse struct {
	ErrorMessage string `json:"error_message"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{ErrorMessage: "method not allowed"})
		return
	}

	var doc domain.Document
	dec := json.NewDecoder(io.LimitReader(r.Body, maxDocumentBody))
	if err := dec.Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{ErrorMessage: "invalid document: " + err.Error()})
		return
	}
	if doc.DocID == "" || doc.DocType == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{ErrorMessage: "doc_id and doc_type are required"})
		return
	}

	n := h.received.Add(1)
	if h.FailEvery > 0 && n%h.FailEvery == 0 {
		writeJSON(w, http.StatusInternalServerError, errorResponse{ErrorMessage: "simulated failure"})
		return
	}

	h.accepted.Add(1)
	id := uuid.NewString()
	h.logger().Info("document accepted",
		"doc_id", doc.DocID,
		"products", len(doc.Products),
		"request_id", r.Header.Get("X-Request-Id"),
		"value", id,
	)
	writeJSON(w, http.StatusOK, createResponse{Value: id})
}

// Received conta documentos válidos recebidos (inclusive os que falharam por FailEvery).
func (h *Handler) Received() int64 { return h.received.Load() }

func (h *Handler) Accepted() int64 { return h.accepted.Load() }

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
