package domain

import (
	"fmt"
	"time"
)

// Bandwidth é uma regra de reabastecimento de um token bucket:
// capacidade máxima, quantos tokens entram a cada período e, opcionalmente,
// com quantos tokens o bucket nasce.
//
// RefillTokens == Capacity descreve o refill "guloso" simples (o bucket volta
// a encher por completo a cada período). RefillTokens < Capacity descreve um
// refill customizado, mais suave.
type Bandwidth struct {
	Name          string
	Capacity      int64
	RefillTokens  int64
	RefillPeriod  time.Duration
	InitialTokens int64 // <= 0 usa Capacity
}

// Validate retorna a lista completa de violações da regra (não para na
// primeira), para que erros de configuração apareçam todos de uma vez.
func (b Bandwidth) Validate() []string {
	var violations []string
	name := b.Name
	if name == "" {
		name = "(unnamed)"
	}
	if b.Capacity <= 0 {
		violations = append(violations, fmt.Sprintf("bandwidth %s: capacity must be > 0, got %d", name, b.Capacity))
	}
	if b.RefillTokens <= 0 {
		violations = append(violations, fmt.Sprintf("bandwidth %s: refill_tokens must be > 0, got %d", name, b.RefillTokens))
	}
	if b.RefillPeriod <= 0 {
		violations = append(violations, fmt.Sprintf("bandwidth %s: refill_period must be > 0, got %s", name, b.RefillPeriod))
	}
	if b.InitialTokens > b.Capacity {
		violations = append(violations, fmt.Sprintf("bandwidth %s: initial_tokens %d exceeds capacity %d", name, b.InitialTokens, b.Capacity))
	}
	return violations
}

// BandwidthSet é o conjunto de regras compostas de uma estratégia/plano.
// Uma requisição precisa satisfazer todas as regras simultaneamente
// (ex: "10/minuto E 100/hora"). Imutável após a construção: pode ser
// compartilhado entre goroutines sem sincronização.
type BandwidthSet []Bandwidth

// Validate exige pelo menos uma regra e cada regra válida.
func (s BandwidthSet) Validate() []string {
	if len(s) == 0 {
		return []string{"at least one bandwidth is required"}
	}
	var violations []string
	for _, b := range s {
		violations = append(violations, b.Validate()...)
	}
	return violations
}
