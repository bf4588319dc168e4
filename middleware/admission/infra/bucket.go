package infra

import (
	"sync"
	"time"

	"admission-gateway/middleware/admission/domain"
)

// window é o estado de uma regra de bandwidth dentro do bucket.
type window struct {
	limit  domain.Bandwidth
	tokens int64
	// last marca o início do intervalo de refill corrente.
	last time.Time
}

// refill repõe os tokens devidos desde o último refill, em intervalos
// inteiros, limitado à capacidade. last avança em múltiplos exatos do
// período para não acumular drift.
func (w *window) refill(now time.Time) {
	elapsed := now.Sub(w.last)
	if elapsed < w.limit.RefillPeriod {
		return
	}
	intervals := int64(elapsed / w.limit.RefillPeriod)
	// intervalos além do necessário para encher não mudam o resultado;
	// o cap evita overflow em elapsed muito grande
	if maxUseful := w.limit.Capacity/w.limit.RefillTokens + 1; intervals > maxUseful {
		w.last = now
		w.tokens = w.limit.Capacity
		return
	}
	w.tokens += intervals * w.limit.RefillTokens
	if w.tokens > w.limit.Capacity {
		w.tokens = w.limit.Capacity
	}
	w.last = w.last.Add(time.Duration(intervals) * w.limit.RefillPeriod)
}

// Bucket implementa domain.TokenBucket para um par (strategy, key).
//
// O mutex é por bucket: consumo no mesmo bucket é linearizável, buckets
// distintos nunca serializam entre si.
type Bucket struct {
	mu      sync.Mutex
	windows []window
}

// NewBucket cria o bucket com uma janela por regra composta. A configuração
// fica embutida no bucket: hits de cache não re-resolvem configuração.
func NewBucket(set domain.BandwidthSet, now time.Time) *Bucket {
	windows := make([]window, len(set))
	for i, limit := range set {
		tokens := limit.InitialTokens
		if tokens <= 0 {
			tokens = limit.Capacity
		}
		windows[i] = window{limit: limit, tokens: tokens, last: now}
	}
	return &Bucket{windows: windows}
}

// Consume faz o refill de todas as janelas e então tenta debitar um token de
// todas como operação tudo-ou-nada: se qualquer janela estiver vazia, nenhuma
// é debitada.
func (b *Bucket) Consume(now time.Time) domain.Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.windows {
		b.windows[i].refill(now)
	}

	// primeiro verifica todas; só debita se todas têm token
	denied := false
	var worst *window
	for i := range b.windows {
		w := &b.windows[i]
		if w.tokens >= 1 {
			continue
		}
		denied = true
		if worst == nil || w.nextToken().After(worst.nextToken()) {
			worst = w
		}
	}

	if denied {
		retry := worst.nextToken().Sub(now)
		if retry <= 0 {
			// janela vazia implica próximo refill no futuro; não devolve
			// zero para o cliente não re-tentar imediatamente
			retry = time.Second
		}
		return domain.Result{
			Allowed:    false,
			Remaining:  0,
			Capacity:   worst.limit.Capacity,
			RetryAfter: retry,
		}
	}

	var binding *window
	for i := range b.windows {
		w := &b.windows[i]
		w.tokens--
		if binding == nil || w.tokens < binding.tokens {
			binding = w
		}
	}
	return domain.Result{
		Allowed:   true,
		Remaining: binding.tokens,
		Capacity:  binding.limit.Capacity,
		ResetAt:   now.Add(binding.limit.RefillPeriod),
	}
}

// nextToken é o instante em que a janela volta a ter pelo menos um token.
func (w *window) nextToken() time.Time {
	return w.last.Add(w.limit.RefillPeriod)
}
