package domain

import "time"

// TokenBucket representa o estado de runtime de um (strategy, key).
//
// Consume tenta debitar um token de todas as regras compostas como operação
// atômica tudo-ou-nada: se qualquer regra estiver sem token, nada é debitado.
// Implementações devem ser linearizáveis por bucket (sem double-spend sob
// concorrência), sem serializar buckets distintos entre si.
type TokenBucket interface {
	Consume(now time.Time) Result
}

// CacheStats expõe os contadores do cache de buckets.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Loads     int64
	Evictions int64
}

// BucketStore é o dono exclusivo de todo estado de bucket: nenhum outro
// componente lê ou escreve esse estado a não ser via GetOrCreate + Consume.
//
// GetOrCreate garante no máximo uma construção por chave mesmo sob primeiro
// acesso concorrente. O load só roda no miss; o resultado (configuração
// imutável) fica embutido no bucket, então hits repetidos não re-resolvem
// configuração. Erro do load propaga sem criar entrada.
type BucketStore interface {
	GetOrCreate(strategy Strategy, key Key, load func() (BandwidthSet, error)) (TokenBucket, error)
	Len() int
	Stats() CacheStats
	// Remove existe para limpeza administrativa de uma chave específica.
	Remove(strategy Strategy, key Key) bool
	Purge()
}
