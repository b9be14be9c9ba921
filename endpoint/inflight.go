package endpoint

import (
	"context"
	"net/http"
	"time"
)

type InFlightOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
}

// InFlight limita requisições simultâneas com um semáforo de channel.
// Quem não consegue vaga dentro de AcquireTimeout recebe 503, como um endpoint sobrecarregado.
// Max <= 0 desliga o limite.
func InFlight(opts InFlightOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	sem := make(chan struct{}, opts.Max)
	acquire := func(ctx context.Context) bool {
		if opts.AcquireTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.AcquireTimeout)
			defer cancel()
		}
		select {
		case sem <- struct{}{}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acquire(r.Context()) {
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}
			defer func() { <-sem }()

			next.ServeHTTP(w, r)
		})
	}
}
