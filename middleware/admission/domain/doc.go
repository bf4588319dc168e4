// Package domain define contratos e tipos de domínio para controle de admissão
// (rate limit por token bucket, estratégias por rota e por plano de assinatura).
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura (cache, Redis, métricas).
package domain
