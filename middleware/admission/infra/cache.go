package infra

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"admission-gateway/middleware/admission/domain"
)

// cacheKey é a chave estruturada (strategy, key). Estruturada de propósito:
// concatenação de strings com separador poderia colidir se a key contivesse
// o separador.
type cacheKey struct {
	strategy domain.Strategy
	key      domain.Key
}

// BucketCache implementa domain.BucketStore: um único cache compartilhado por
// todas as estratégias, limitado por quantidade de entradas (LRU) e por TTL
// de inatividade.
//
// A expiração de entradas ociosas roda assíncrona (goroutine da lib); o limite
// de tamanho é aplicado na inserção. Tolerância documentada: entradas
// expiradas podem permanecer por até ~uma varredura, o tamanho residente
// nunca passa de maxEntries.
type BucketCache struct {
	entries *lru.LRU[cacheKey, *Bucket]

	// loadMu serializa apenas o caminho de miss, garantindo no máximo uma
	// construção por chave sob primeiro acesso concorrente. Hits não passam
	// por aqui.
	loadMu sync.Mutex

	hits      atomic.Int64
	misses    atomic.Int64
	loads     atomic.Int64
	evictions atomic.Int64

	now func() time.Time
}

type CacheOption func(*BucketCache)

// WithCacheClock injeta o relógio usado ao criar buckets (testes).
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *BucketCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewBucketCache cria o cache. maxEntries 0 remove o limite de tamanho;
// ttl 0 desliga a expiração por inatividade.
func NewBucketCache(maxEntries int, ttl time.Duration, opts ...CacheOption) *BucketCache {
	c := &BucketCache{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = lru.NewLRU(maxEntries, func(cacheKey, *Bucket) {
		c.evictions.Add(1)
	}, ttl)
	return c
}

// GetOrCreate devolve o bucket da chave, criando-o no primeiro acesso com a
// configuração retornada por load. Erro do load propaga sem criar entrada —
// assim um plano inválido falha em toda chamada, nunca vira bucket.
func (c *BucketCache) GetOrCreate(strategy domain.Strategy, key domain.Key, load func() (domain.BandwidthSet, error)) (domain.TokenBucket, error) {
	k := cacheKey{strategy: strategy, key: key}

	if b, ok := c.entries.Get(k); ok {
		// re-Add renova o TTL: a expiração é por inatividade, para não
		// recriar (cheio de tokens) um bucket em uso com janela longa
		c.entries.Add(k, b)
		c.hits.Add(1)
		return b, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// outra goroutine pode ter carregado enquanto esperávamos o lock
	if b, ok := c.entries.Get(k); ok {
		c.hits.Add(1)
		return b, nil
	}

	c.misses.Add(1)
	set, err := load()
	if err != nil {
		return nil, err
	}
	b := NewBucket(set, c.now())
	c.entries.Add(k, b)
	c.loads.Add(1)
	return b, nil
}

// Len é o número de entradas residentes.
func (c *BucketCache) Len() int { return c.entries.Len() }

// Stats retorna os contadores acumulados.
func (c *BucketCache) Stats() domain.CacheStats {
	return domain.CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Loads:     c.loads.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Remove descarta o bucket de uma chave (limpeza administrativa).
func (c *BucketCache) Remove(strategy domain.Strategy, key domain.Key) bool {
	return c.entries.Remove(cacheKey{strategy: strategy, key: key})
}

// Purge descarta todos os buckets.
func (c *BucketCache) Purge() { c.entries.Purge() }
