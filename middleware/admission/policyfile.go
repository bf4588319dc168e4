package admission

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"admission-gateway/middleware/admission/domain"
)

// Formato do arquivo YAML de política. Os structs de wire ficam aqui para o
// pacote domain não conhecer YAML.
type policyFile struct {
	Enabled *bool `yaml:"enabled"`

	Cache struct {
		MaxEntries int `yaml:"max_entries"`
		TTLMinutes int `yaml:"ttl_minutes"`
	} `yaml:"cache"`

	// Ordem da lista = prioridade (tier mais privilegiado primeiro).
	TierPrefixes []struct {
		Prefix string `yaml:"prefix"`
		Tier   string `yaml:"tier"`
	} `yaml:"tier_prefixes"`

	Strategies map[string]policyEntry `yaml:"strategies"`
}

type policyEntry struct {
	Enabled   *bool                   `yaml:"enabled"`
	Endpoints []string                `yaml:"endpoints"`
	Limits    []limitEntry            `yaml:"limits"`
	Plans     map[string][]limitEntry `yaml:"plans"`
}

type limitEntry struct {
	Name          string `yaml:"name"`
	Capacity      int64  `yaml:"capacity"`
	RefillTokens  int64  `yaml:"refill_tokens"`  // omitido = capacity (refill guloso)
	RefillPeriod  string `yaml:"refill_period"`  // formato time.ParseDuration, ex: "1m"
	InitialTokens int64  `yaml:"initial_tokens"` // omitido = capacity
}

const (
	defaultCacheMaxEntries = 10000
	defaultCacheTTLMinutes = 60
)

// LoadPolicyFile lê e valida o arquivo de política. Qualquer violação falha
// aqui, no startup.
func LoadPolicyFile(path string) (domain.PolicySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PolicySet{}, fmt.Errorf("policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy converte o YAML em domain.PolicySet e valida eager.
func ParsePolicy(data []byte) (domain.PolicySet, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return domain.PolicySet{}, fmt.Errorf("policy file: %w", err)
	}

	ps := domain.PolicySet{
		Enabled:         file.Enabled == nil || *file.Enabled,
		Strategies:      make(map[domain.Strategy]domain.Policy, len(file.Strategies)),
		CacheMaxEntries: file.Cache.MaxEntries,
		CacheTTL:        time.Duration(file.Cache.TTLMinutes) * time.Minute,
	}
	if ps.CacheMaxEntries == 0 {
		ps.CacheMaxEntries = defaultCacheMaxEntries
	}
	if ps.CacheTTL == 0 {
		ps.CacheTTL = defaultCacheTTLMinutes * time.Minute
	}

	for _, tp := range file.TierPrefixes {
		tier, err := domain.ParseTier(tp.Tier)
		if err != nil {
			return domain.PolicySet{}, fmt.Errorf("policy file: tier_prefixes: %w", err)
		}
		if tp.Prefix == "" {
			return domain.PolicySet{}, fmt.Errorf("policy file: tier_prefixes: empty prefix for tier %q", tp.Tier)
		}
		ps.TierPrefixes = append(ps.TierPrefixes, domain.TierPrefix{Prefix: tp.Prefix, Tier: tier})
	}

	for name, entry := range file.Strategies {
		strategy, err := domain.ParseStrategy(name)
		if err != nil {
			return domain.PolicySet{}, fmt.Errorf("policy file: %w", err)
		}

		pol := domain.Policy{
			Enabled:   entry.Enabled == nil || *entry.Enabled,
			Endpoints: entry.Endpoints,
		}
		if len(entry.Plans) > 0 {
			pol.Plans = make(map[string]domain.BandwidthSet, len(entry.Plans))
			for plan, limits := range entry.Plans {
				set, err := toBandwidthSet(limits)
				if err != nil {
					return domain.PolicySet{}, fmt.Errorf("policy file: strategy %s plan %s: %w", name, plan, err)
				}
				pol.Plans[strings.ToLower(strings.TrimSpace(plan))] = set
			}
		}
		if len(entry.Limits) > 0 {
			set, err := toBandwidthSet(entry.Limits)
			if err != nil {
				return domain.PolicySet{}, fmt.Errorf("policy file: strategy %s: %w", name, err)
			}
			pol.Limits = set
		}

		ps.Strategies[strategy] = pol
	}

	if err := ps.Validate(); err != nil {
		return domain.PolicySet{}, err
	}
	return ps, nil
}

func toBandwidthSet(entries []limitEntry) (domain.BandwidthSet, error) {
	set := make(domain.BandwidthSet, 0, len(entries))
	for _, e := range entries {
		period, err := time.ParseDuration(e.RefillPeriod)
		if err != nil {
			return nil, fmt.Errorf("limit %s: refill_period: %w", e.Name, err)
		}
		refill := e.RefillTokens
		if refill == 0 {
			refill = e.Capacity
		}
		set = append(set, domain.Bandwidth{
			Name:          e.Name,
			Capacity:      e.Capacity,
			RefillTokens:  refill,
			RefillPeriod:  period,
			InitialTokens: e.InitialTokens,
		})
	}
	return set, nil
}
