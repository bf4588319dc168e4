package domain

import (
	"fmt"
	"strings"
)

// Key identifica "quem está pedindo" (ex: "IP:1.2.3.4" ou uma API key).
// É um valor opaco: duas Keys diferentes sob a mesma Strategy são totalmente
// independentes, e a mesma Key sob Strategies diferentes também.
type Key string

// Strategy é o eixo de política de rate limit. O conjunto é fechado e
// conhecido em tempo de compilação; cada valor tem sua própria configuração
// e sua própria partição no cache de buckets.
type Strategy int

const (
	StrategyAuth Strategy = iota
	StrategyBusiness
	StrategyResume
	StrategyWaitlist
)

// Strategies retorna todas as estratégias na ordem fixa de avaliação
// (usada pelo filtro HTTP ao casar endpoints).
func Strategies() []Strategy {
	return []Strategy{StrategyAuth, StrategyBusiness, StrategyResume, StrategyWaitlist}
}

func (s Strategy) String() string {
	switch s {
	case StrategyAuth:
		return "auth"
	case StrategyBusiness:
		return "business"
	case StrategyResume:
		return "resume"
	case StrategyWaitlist:
		return "waitlist"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Tiered indica se a estratégia seleciona limites por plano de assinatura
// (resolvido a partir do prefixo da API key) em vez de um conjunto fixo.
func (s Strategy) Tiered() bool {
	return s == StrategyBusiness
}

// DeniedMessage é a mensagem voltada ao cliente quando a estratégia nega a
// requisição. Nunca expõe texto de erro interno.
func (s Strategy) DeniedMessage() string {
	switch s {
	case StrategyAuth:
		return "too many authentication attempts, slow down"
	case StrategyBusiness:
		return "business API quota exceeded for your plan"
	case StrategyResume:
		return "resume operations limit reached, try again shortly"
	case StrategyWaitlist:
		return "waitlist requests limit reached, try again later"
	default:
		return "rate limit exceeded"
	}
}

// MarshalText serializa a estratégia pelo nome (usado no payload JSON dos
// eventos de negação).
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText é o inverso de MarshalText.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStrategy converte o nome textual (como aparece no arquivo de política)
// para o enum. Case-insensitive.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "auth":
		return StrategyAuth, nil
	case "business":
		return StrategyBusiness, nil
	case "resume":
		return StrategyResume, nil
	case "waitlist":
		return StrategyWaitlist, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", name)
	}
}
