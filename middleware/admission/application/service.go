package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"admission-gateway/middleware/admission/domain"
)

// TokenConsumer é o contrato que o Service espera do limiter (permite fakes
// nos testes sem montar cache e política reais).
type TokenConsumer interface {
	ConsumeToken(key domain.Key, strategy domain.Strategy, plan string) (domain.Result, error)
}

// Service concentra a regra de aplicação: delega a decisão ao limiter e, se
// (e somente se) a requisição for negada, publica o evento de negação no
// sink configurado.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna o veredito.
type Service struct {
	Limiter TokenConsumer
	Events  domain.EventSink

	// Logf recebe falhas best-effort de publicação (nil descarta).
	Logf func(format string, args ...any)
}

// ConsumeToken decide a admissão de (key, strategy) no endpoint dado.
//
// Erro do limiter propaga intacto (nunca é engolido, nunca vira veredito).
// Erro do sink de eventos é best-effort: logado e ignorado, a negação segue
// valendo.
func (s Service) ConsumeToken(ctx context.Context, key domain.Key, strategy domain.Strategy, plan, endpoint string) (domain.Result, error) {
	if s.Limiter == nil {
		return domain.Result{Allowed: true}, nil
	}

	res, err := s.Limiter.ConsumeToken(key, strategy, plan)
	if err != nil {
		return domain.Result{}, err
	}

	if !res.Allowed && s.Events != nil {
		ev := domain.DeniedEvent{
			ID:       uuid.NewString(),
			Key:      key,
			Strategy: strategy,
			Endpoint: endpoint,
			Window:   res.RetryAfter,
			At:       time.Now(),
		}
		if perr := s.Events.Publish(ctx, ev); perr != nil && s.Logf != nil {
			s.Logf("admission: denied-event publish failed: %v", perr)
		}
	}

	return res, nil
}
