package endpoint

import (
	"math"
	"net"
	"net/http"
	"strings"
	"time"
)

type KeyFunc func(r *http.Request) string

type LimitOptions struct {
	Store *QuotaStore
	KeyFn KeyFunc
	// KeyHeader é o header usado como chave (por padrão a assinatura).
	KeyHeader           string
	RejectStatus        int
	AddRateLimitHeaders bool
}

// DefaultKeyFunc usa o header informado e cai para o host de RemoteAddr.
func DefaultKeyFunc(keyHeader string) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// Limit aplica a quota do QuotaStore por chave. Store nil desliga o limite.
func Limit(opts LimitOptions) func(next http.Handler) http.Handler {
	if opts.Store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", key)
				w.Header().Set("X-RateLimit-RPS", formatFloat(opts.Store.RPS()))
				w.Header().Set("X-RateLimit-Burst", formatInt(opts.Store.Burst()))
			}

			ok, retryAfter := opts.Store.Allow(key)
			if !ok {
				w.Header().Set("Retry-After", formatInt(retryAfterSeconds(retryAfter)))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Retry-After em segundos inteiros, arredondado para cima e no mínimo 1.
func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
