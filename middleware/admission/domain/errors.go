package domain

import (
	"fmt"
	"strings"
)

// ConfigurationError indica definição de limites inválida ou ausente.
// É levantado na validação eager (construção do PolicySet) e também a cada
// lookup com configuração ruim; nunca é silenciosamente "defaultado", pois
// permitir tráfego com config quebrada desligaria o rate limit sem aviso.
type ConfigurationError struct {
	Strategy   Strategy
	Violations []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("admission config for strategy %q: %s",
		e.Strategy, strings.Join(e.Violations, "; "))
}

// UnknownPlanError especializa o erro de configuração para lookup de plano
// inexistente, carregando o nome pedido e todos os nomes válidos para
// diagnóstico acionável.
type UnknownPlanError struct {
	Plan  string
	Known []string
}

func (e *UnknownPlanError) Error() string {
	return fmt.Sprintf("unknown plan %q, valid plans: %s",
		e.Plan, strings.Join(e.Known, ", "))
}
