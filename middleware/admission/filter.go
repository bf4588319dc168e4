package admission

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"admission-gateway/middleware/admission/application"
	"admission-gateway/middleware/admission/domain"
	"admission-gateway/middleware/admission/infra"
)

type Options struct {
	// Policies é a configuração completa (obrigatória), validada eager.
	Policies domain.PolicySet

	// Store é o cache de buckets. Nil cria um infra.BucketCache com os
	// limites da política.
	Store domain.BucketStore

	// Events recebe os eventos de negação (nil desliga a emissão).
	Events domain.EventSink

	// Metrics recebe contadores/timers/gauges (nil descarta).
	Metrics domain.MetricsRecorder

	// IdentityFn extrai a identidade; nil usa DefaultIdentityFunc.
	IdentityFn IdentityFunc

	// KeyHeader é o header da API key para estratégias tiered.
	KeyHeader string

	TrustXForwardedFor bool

	// Clock injeta o relógio do limiter (testes).
	Clock func() time.Time

	// Logf recebe erros internos e falhas best-effort (nil descarta).
	Logf func(format string, args ...any)
}

// evaluatedKey marca no contexto que a requisição já passou pela avaliação.
type evaluatedKey struct{}

// Middleware monta o filtro de admissão HTTP. A política é validada aqui:
// configuração quebrada falha no startup, não no meio de uma requisição.
//
// Máquina de estados por requisição:
//
//	NOT_PROCESSED -> (skip | evaluate) -> (forward | reject) -> PROCESSED
//
// skip: marcador de reentrância presente, filtro global desligado, estratégia
// desabilitada ou endpoint fora da tabela — segue sem chamar o limiter e sem
// headers.
func Middleware(opts Options) (func(next http.Handler) http.Handler, error) {
	if opts.KeyHeader == "" {
		opts.KeyHeader = "X-Api-Key"
	}
	if opts.IdentityFn == nil {
		opts.IdentityFn = DefaultIdentityFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Store == nil {
		opts.Store = infra.NewBucketCache(opts.Policies.CacheMaxEntries, opts.Policies.CacheTTL)
	}

	limiter, err := application.NewLimiter(opts.Policies, opts.Store,
		application.WithMetrics(opts.Metrics),
		application.WithClock(opts.Clock),
	)
	if err != nil {
		return nil, err
	}
	svc := application.Service{Limiter: limiter, Events: opts.Events, Logf: opts.Logf}

	table := buildEndpointTable(opts.Policies)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// guarda de idempotência para cadeias de filtro que reentram
			if r.Context().Value(evaluatedKey{}) != nil {
				next.ServeHTTP(w, r)
				return
			}

			if !opts.Policies.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			strategy, ok := table.match(r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			r = r.WithContext(context.WithValue(r.Context(), evaluatedKey{}, true))

			identity := opts.IdentityFn(r)
			plan := ""
			if strategy.Tiered() {
				plan = domain.ResolveTier(string(identity), opts.Policies.TierPrefixes).Plan()
			}

			res, err := svc.ConsumeToken(r.Context(), identity, strategy, plan, r.URL.Path)
			if err != nil {
				// erro de configuração nunca vira allow: permitir aqui
				// desligaria o rate limit em silêncio
				if opts.Logf != nil {
					opts.Logf("admission: check failed for %s: %v", r.URL.Path, err)
				}
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "admission check failed")
				return
			}

			if !res.Allowed {
				retry := formatCeilSeconds(res.RetryAfter)
				w.Header().Set("Retry-After", retry)
				w.Header().Set("X-RateLimit-Limit", formatInt64(res.Capacity))
				// header legado, mantido por compatibilidade com clientes antigos
				w.Header().Set("X-Rate-Limit-Retry-After-Seconds", retry)
				writeJSONError(w, http.StatusTooManyRequests, "too_many_requests", strategy.DeniedMessage())
				return
			}

			w.Header().Set("X-RateLimit-Limit", formatInt64(res.Capacity))
			w.Header().Set("X-RateLimit-Remaining", formatInt64(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", formatUnix(res.ResetAt))
			next.ServeHTTP(w, r)
		})
	}, nil
}

// endpointTable é a tabela endpoint normalizado -> estratégia, montada uma
// vez no startup. Colisões de endpoint entre estratégias resolvem pela ordem
// fixa de Strategies().
type endpointTable map[string]domain.Strategy

func buildEndpointTable(ps domain.PolicySet) endpointTable {
	table := make(endpointTable)
	for _, st := range domain.Strategies() {
		pol, ok := ps.Strategies[st]
		if !ok || !pol.Enabled {
			continue
		}
		for _, ep := range pol.Endpoints {
			norm := normalizePath(ep)
			if _, exists := table[norm]; !exists {
				table[norm] = st
			}
		}
	}
	return table
}

func (t endpointTable) match(path string) (domain.Strategy, bool) {
	st, ok := t[normalizePath(path)]
	return st, ok
}

// normalizePath remove barras finais para o match exato: "/api/auth/login/"
// casa com "/api/auth/login", mas "/api/auth-extended" nunca casa com
// "/api/auth" (match exato, não substring).
func normalizePath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}

type errorBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Status: status, Error: code, Message: message})
}
