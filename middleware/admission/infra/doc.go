// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - Bucket: token bucket com regras compostas e débito tudo-ou-nada
//   - BucketCache: cache de buckets limitado por tamanho (LRU) e por TTL de
//     inatividade, usando hashicorp/golang-lru
//   - RedisEventSink: eventos de negação em Redis, com throttle de publicação
//   - MemoryMetrics / NopMetrics: backends de métricas
//   - ChanPool: semáforo simples para limite de concorrência
package infra
