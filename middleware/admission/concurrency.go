package admission

import (
	"net/http"
	"time"

	"admission-gateway/middleware/admission/application"
	"admission-gateway/middleware/admission/domain"
	"admission-gateway/middleware/admission/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration

	// Metrics conta rejeições por saturação (nil descarta).
	Metrics domain.MetricsRecorder
}

// ConcurrencyMiddleware limita requisições em voo. Saturação responde com
// RejectStatus (default 503) — sem headers de rate limit, porque não é cota.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				if opts.Metrics != nil {
					opts.Metrics.Add(domain.MetricConcurrencyRejected, 1, nil)
				}
				writeJSONError(w, opts.RejectStatus, "saturated", "server is at capacity, try again shortly")
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
