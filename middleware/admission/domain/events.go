package domain

import (
	"context"
	"time"
)

// DeniedEvent é emitido quando uma requisição é negada, para alerta
// downstream. Nunca é emitido em requisições permitidas.
//
// Observação: cuidado com cardinalidade ao persistir Key/Endpoint sem
// controle (pode explodir o número de chaves em uma base como Redis).
type DeniedEvent struct {
	ID       string        `json:"id"`
	Key      Key           `json:"key"`
	Strategy Strategy      `json:"strategy"`
	Endpoint string        `json:"endpoint"`
	Window   time.Duration `json:"window"`
	At       time.Time     `json:"at"`
}

// EventSink é a estratégia de publicação de eventos de negação.
//
// Implementações podem publicar em Redis, memória, etc. O serviço trata erro
// de publicação como best-effort (não derruba a requisição).
type EventSink interface {
	Publish(ctx context.Context, ev DeniedEvent) error
}
