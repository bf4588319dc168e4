package infra

import (
	"context"
	"sync"

	"admission-gateway/middleware/admission/domain"
)

// MemoryEventSink guarda eventos de negação em memória. Útil para testes e
// desenvolvimento; não expira e não é indicado para produção.
type MemoryEventSink struct {
	mu     sync.Mutex
	events []domain.DeniedEvent
}

func NewMemoryEventSink() *MemoryEventSink {
	return &MemoryEventSink{}
}

func (s *MemoryEventSink) Publish(_ context.Context, ev domain.DeniedEvent) error {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return nil
}

// Events retorna uma cópia dos eventos publicados até aqui.
func (s *MemoryEventSink) Events() []domain.DeniedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.DeniedEvent, len(s.events))
	copy(out, s.events)
	return out
}
