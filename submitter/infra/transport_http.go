package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"document-gateway/submitter/domain"
)

// DefaultEndpoint é o endpoint de criação de documentos.
const DefaultEndpoint = "https://ismp.crpt.ru/api/v3/lk/documents/create"

const (
	RequestIDHeader        = "X-Request-Id"
	DefaultSignatureHeader = "X-Signature"

	maxResponseBody = 1 << 20
)

// HTTPTransport envia o payload via POST JSON para um endpoint fixo.
type HTTPTransport struct {
	client          *http.Client
	endpoint        string
	signatureHeader string
}

type HTTPTransportOption func(*HTTPTransport)

func WithHTTPClient(c *http.Client) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithSignatureHeader troca o header onde a assinatura é repassada.
// Vazio desliga o repasse.
func WithSignatureHeader(h string) HTTPTransportOption {
	return func(t *HTTPTransport) { t.signatureHeader = h }
}

func NewHTTPTransport(endpoint string, opts ...HTTPTransportOption) (*HTTPTransport, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &domain.ConfigurationError{Field: "endpoint", Reason: fmt.Sprintf("invalid url %q", endpoint)}
	}

	t := &HTTPTransport{
		client:          &http.Client{Timeout: 30 * time.Second},
		endpoint:        endpoint,
		signatureHeader: DefaultSignatureHeader,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *HTTPTransport) Endpoint() string { return t.endpoint }

// Send implementa domain.Transport.
func (t *HTTPTransport) Send(ctx context.Context, req domain.Request) (domain.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(req.Payload))
	if err != nil {
		return domain.Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.RequestID != "" {
		httpReq.Header.Set(RequestIDHeader, req.RequestID)
	}
	if t.signatureHeader != "" && req.Signature != "" {
		httpReq.Header.Set(t.signatureHeader, req.Signature)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return domain.Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return domain.Response{StatusCode: resp.StatusCode}, fmt.Errorf("read response: %w", err)
	}
	return domain.Response{StatusCode: resp.StatusCode, Body: body}, nil
}
