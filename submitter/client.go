package submitter

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"document-gateway/submitter/application"
	"document-gateway/submitter/domain"
	"document-gateway/submitter/infra"

	"github.com/google/uuid"
)

type Options struct {
	// Limit é o número máximo de admissões por período. Obrigatório, > 0.
	Limit int
	// Period é o intervalo entre resets do contador. Obrigatório, > 0,
	// exceto quando ResetSchedule é informado.
	Period time.Duration
	// ResetSchedule (cron, ex: "* * * * *") alinha os resets ao relógio de parede.
	ResetSchedule string

	// AcquireTimeout limita a espera no gate por chamada. 0 espera até o ctx encerrar.
	AcquireTimeout time.Duration

	// Transport tem precedência sobre Endpoint/HTTPClient.
	Transport  domain.Transport
	Endpoint   string
	HTTPClient *http.Client

	Serializer domain.Serializer
	Stats      domain.StatsStore
	Logger     *slog.Logger
}

// Client é seguro para uso concorrente. Cada Client tem seu próprio orçamento;
// dois clients não interferem entre si.
type Client struct {
	gate  *infra.RateGate
	clock domain.Clock
	svc   application.SubmitService

	closeOnce sync.Once
}

// NewClient valida as opções antes de subir o relógio de reset.
func NewClient(opts Options) (*Client, error) {
	schedule := strings.TrimSpace(opts.ResetSchedule)
	if schedule == "" && opts.Period <= 0 {
		return nil, &domain.ConfigurationError{Field: "period", Reason: "must be > 0"}
	}
	if opts.AcquireTimeout < 0 {
		return nil, &domain.ConfigurationError{Field: "acquire_timeout", Reason: "must be >= 0"}
	}

	transport := opts.Transport
	if transport == nil {
		if opts.Endpoint == "" {
			return nil, &domain.ConfigurationError{Field: "transport", Reason: "or endpoint is required"}
		}
		tr, err := infra.NewHTTPTransport(opts.Endpoint, infra.WithHTTPClient(opts.HTTPClient))
		if err != nil {
			return nil, err
		}
		transport = tr
	}

	serializer := opts.Serializer
	if serializer == nil {
		serializer = infra.JSONSerializer{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "submitter")

	gate, err := infra.NewRateGate(opts.Limit)
	if err != nil {
		return nil, err
	}

	var clock domain.Clock
	clockLogger := infra.WithClockLogger(logger.With("limit", opts.Limit))
	if schedule != "" {
		clock, err = infra.StartCronResetClock(schedule, gate.Reset, clockLogger)
	} else {
		clock, err = infra.StartResetClock(opts.Period, gate.Reset, clockLogger)
	}
	if err != nil {
		return nil, err
	}

	return &Client{
		gate:  gate,
		clock: clock,
		svc: application.SubmitService{
			Admission: application.AdmissionService{
				Gate:           gate,
				AcquireTimeout: opts.AcquireTimeout,
			},
			Serializer: serializer,
			Transport:  transport,
			Stats:      opts.Stats,
			Logger:     logger,
			RequestID:  uuid.NewString,
		},
	}, nil
}

// SubmitDocument bloqueia até haver vaga no período e então envia o documento.
//
// Erros possíveis: domain.ErrCancelled (ctx/timeout antes da admissão),
// domain.ErrGateClosed (client fechado) ou *domain.TransportError (depois da
// admissão; a vaga não é devolvida).
func (c *Client) SubmitDocument(ctx context.Context, doc domain.Document, signature string) (domain.Outcome, error) {
	return c.svc.Submit(ctx, doc, signature)
}

// Submit é como SubmitDocument, para payloads já montados pelo chamador.
func (c *Client) Submit(ctx context.Context, payload any, signature string) (domain.Outcome, error) {
	return c.svc.Submit(ctx, payload, signature)
}

func (c *Client) Limit() int { return c.gate.Limit() }

// Close para o relógio e libera quem está bloqueado com domain.ErrGateClosed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.clock.Stop()
		c.gate.Close()
	})
	return nil
}
