package application

import (
	"time"

	"admission-gateway/middleware/admission/domain"
)

// Limiter orquestra a resolução de configuração, o cache de buckets e o
// consumo atômico de tokens.
//
// ConsumeToken é computação em memória (sub-microssegundo, sem I/O): pode
// ser chamado de qualquer contexto concorrente sem lock externo.
type Limiter struct {
	policies domain.PolicySet
	store    domain.BucketStore
	metrics  domain.MetricsRecorder
	now      func() time.Time
}

type LimiterOption func(*Limiter)

// WithMetrics injeta o backend de métricas (default: descarta).
func WithMetrics(m domain.MetricsRecorder) LimiterOption {
	return func(l *Limiter) {
		if m != nil {
			l.metrics = m
		}
	}
}

// WithClock injeta o relógio usado no refill (testes).
func WithClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLimiter valida a política eager: configuração quebrada falha aqui, no
// startup, em vez de degradar no meio de uma requisição.
func NewLimiter(policies domain.PolicySet, store domain.BucketStore, opts ...LimiterOption) (*Limiter, error) {
	if err := policies.Validate(); err != nil {
		return nil, err
	}
	l := &Limiter{
		policies: policies,
		store:    store,
		metrics:  discardMetrics{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// ConsumeToken tenta debitar um token de (key, strategy) sob o plano dado
// (vazio para estratégias não-tiered).
//
// A resolução de configuração só roda no miss do cache; o resultado fica
// embutido no bucket. Erro de configuração (plano desconhecido, política
// ausente) propaga síncrono ao chamador — sem veredito: a camada HTTP deve
// tratar como 5xx, nunca como permitido.
func (l *Limiter) ConsumeToken(key domain.Key, strategy domain.Strategy, plan string) (domain.Result, error) {
	start := time.Now()

	bucket, err := l.store.GetOrCreate(strategy, key, func() (domain.BandwidthSet, error) {
		return l.policies.Limits(strategy, plan)
	})
	if err != nil {
		return domain.Result{}, err
	}

	res := bucket.Consume(l.now())

	outcome := "allowed"
	if !res.Allowed {
		outcome = "denied"
		l.metrics.Add(domain.MetricDenied, 1, map[string]string{"strategy": strategy.String()})
	}
	l.metrics.Add(domain.MetricCheck, 1, map[string]string{"strategy": strategy.String(), "result": outcome})
	l.metrics.Observe(domain.MetricConsumeSeconds, time.Since(start).Seconds(), map[string]string{"strategy": strategy.String()})
	l.metrics.Gauge(domain.MetricCacheSize, float64(l.store.Len()), nil)

	return res, nil
}

// discardMetrics evita nil-checks espalhados no caminho quente.
type discardMetrics struct{}

func (discardMetrics) Add(string, float64, map[string]string)     {}
func (discardMetrics) Observe(string, float64, map[string]string) {}
func (discardMetrics) Gauge(string, float64, map[string]string)   {}
