// Package admission fornece adapters HTTP (net/http) para controle de
// admissão: rate limit por token bucket com estratégias por rota/plano e
// limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (consumo de token, emissão de evento de
//     negação, acquire/timeout) sem net/http
//   - infra: implementações concretas (bucket, cache LRU+TTL, sinks Redis e
//     memória), detalhes de infraestrutura
//   - admission (este pacote): middlewares HTTP + extração de identidade +
//     arquivo de política + tradução para status/headers
//
// Fluxo no gateway:
//
//  1. Casa o path da requisição com a tabela de endpoints por estratégia
//     (match exato após normalizar barra final)
//  2. Extrai a identidade (API key ou "IP:<addr>") e, para estratégias
//     tiered, resolve o plano pelo prefixo da key
//  3. Chama a camada application para obter o veredito
//  4. Permitido: segue com headers X-RateLimit-*; negado: responde 429 com
//     Retry-After e corpo JSON; erro de configuração: 500 (nunca permite
//     silenciosamente)
//
// Variáveis de ambiente do binário gateway (cmd/gateway) e o arquivo YAML de
// política controlam o comportamento; veja POLICY_FILE e policy.example.yaml.
package admission
