package infra

import (
	"context"
	"sync/atomic"

	"admission-gateway/middleware/admission/domain"
)

// ChanPool é um pool de vagas baseado em channel, com contagem de vagas em
// uso para observabilidade.
type ChanPool struct {
	sem      chan struct{}
	inFlight atomic.Int64
}

// NewChanPool cria o pool com capacidade `max`.
func NewChanPool(max int) *ChanPool {
	return &ChanPool{sem: make(chan struct{}, max)}
}

func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		p.inFlight.Add(1)
		var released atomic.Bool
		return func() {
			if released.CompareAndSwap(false, true) {
				p.inFlight.Add(-1)
				<-p.sem
			}
		}, true
	case <-ctx.Done():
		return nil, false
	}
}

// InFlight é o número de vagas em uso agora.
func (p *ChanPool) InFlight() int64 { return p.inFlight.Load() }

var _ domain.SlotPool = (*ChanPool)(nil)
