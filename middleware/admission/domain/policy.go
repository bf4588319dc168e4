package domain

import (
	"sort"
	"strings"
	"time"
)

// Policy é a configuração de uma estratégia: flag de habilitação, endpoints
// protegidos e as regras de bandwidth (fixas, ou por plano quando a
// estratégia é tiered).
type Policy struct {
	Enabled   bool
	Endpoints []string

	// Limits vale para estratégias não-tiered.
	Limits BandwidthSet

	// Plans mapeia nome de plano (minúsculo) -> regras. Só para tiered.
	Plans map[string]BandwidthSet
}

// PolicySet é a superfície de configuração completa do controle de admissão,
// carregada no startup e somente-leitura depois disso.
type PolicySet struct {
	// Enabled desliga o filtro inteiro quando false.
	Enabled bool

	Strategies map[Strategy]Policy

	// TierPrefixes em ordem de prioridade (mais privilegiado primeiro).
	TierPrefixes []TierPrefix

	// Limites do cache de buckets.
	CacheMaxEntries int
	CacheTTL        time.Duration
}

// Validate roda eager, na construção: config quebrada precisa aparecer no
// startup, não degradar para "sempre negado" (ou quebrar) no meio de uma
// requisição. Estratégias desabilitadas também são validadas.
func (ps PolicySet) Validate() error {
	for _, st := range Strategies() {
		pol, ok := ps.Strategies[st]
		if !ok {
			continue
		}
		var violations []string
		if st.Tiered() {
			if len(pol.Plans) == 0 {
				violations = append(violations, "tiered strategy requires at least one plan")
			}
			for name, set := range pol.Plans {
				for _, v := range set.Validate() {
					violations = append(violations, "plan "+name+": "+v)
				}
			}
		} else {
			violations = append(violations, pol.Limits.Validate()...)
		}
		if len(violations) > 0 {
			sort.Strings(violations)
			return &ConfigurationError{Strategy: st, Violations: violations}
		}
	}
	if ps.CacheMaxEntries < 0 {
		return &ConfigurationError{Violations: []string{"cache max entries must be >= 0"}}
	}
	return nil
}

// Limits é a fábrica de configuração de bandwidth: resolve o BandwidthSet de
// uma estratégia (e, para tiered, de um plano, case-insensitive).
//
// Plano desconhecido retorna *UnknownPlanError com todos os nomes válidos.
// Estratégia sem política ou com regras inválidas retorna *ConfigurationError.
func (ps PolicySet) Limits(strategy Strategy, plan string) (BandwidthSet, error) {
	pol, ok := ps.Strategies[strategy]
	if !ok {
		return nil, &ConfigurationError{
			Strategy:   strategy,
			Violations: []string{"no policy configured"},
		}
	}

	var set BandwidthSet
	if strategy.Tiered() {
		name := strings.ToLower(strings.TrimSpace(plan))
		if name == "" {
			name = TierFree.Plan()
		}
		set, ok = pol.Plans[name]
		if !ok {
			return nil, &UnknownPlanError{Plan: plan, Known: ps.planNames(pol)}
		}
	} else {
		set = pol.Limits
	}

	if violations := set.Validate(); len(violations) > 0 {
		return nil, &ConfigurationError{Strategy: strategy, Violations: violations}
	}
	return set, nil
}

func (ps PolicySet) planNames(pol Policy) []string {
	names := make([]string, 0, len(pol.Plans))
	for name := range pol.Plans {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
