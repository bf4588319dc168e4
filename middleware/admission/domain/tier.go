package domain

import (
	"fmt"
	"strings"
)

// Tier é o nível de assinatura usado pelas estratégias tiered.
type Tier int

const (
	TierFree Tier = iota
	TierBasic
	TierProfessional
)

func (t Tier) String() string {
	switch t {
	case TierFree:
		return "free"
	case TierBasic:
		return "basic"
	case TierProfessional:
		return "professional"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Plan é o nome do plano na tabela de limites (igual ao String do tier).
func (t Tier) Plan() string { return t.String() }

// ParseTier converte o nome textual do arquivo de política. Case-insensitive.
func ParseTier(name string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "free":
		return TierFree, nil
	case "basic":
		return TierBasic, nil
	case "professional":
		return TierProfessional, nil
	default:
		return 0, fmt.Errorf("unknown tier %q", name)
	}
}

// TierPrefix associa um prefixo de API key a um tier. A ordem na lista é a
// ordem de prioridade (tier mais privilegiado primeiro).
type TierPrefix struct {
	Prefix string
	Tier   Tier
}

// ResolveTier resolve o tier de uma API key pelo primeiro prefixo que casar,
// na ordem declarada. O teste é de prefixo exato e case-sensitive, não busca
// por substring. Sem match (inclusive key vazia) retorna TierFree.
//
// Uma key que é apenas o prefixo (sem sufixo) ainda casa com o tier.
func ResolveTier(rawKey string, prefixes []TierPrefix) Tier {
	for _, p := range prefixes {
		if p.Prefix == "" {
			// prefixo vazio casaria com tudo; ignorado
			continue
		}
		if strings.HasPrefix(rawKey, p.Prefix) {
			return p.Tier
		}
	}
	return TierFree
}
