package infra

import (
	"sync"
	"testing"
	"time"

	"admission-gateway/middleware/admission/domain"
)

func minuteSet(capacity int64) domain.BandwidthSet {
	return domain.BandwidthSet{
		{Name: "per-minute", Capacity: capacity, RefillTokens: capacity, RefillPeriod: time.Minute},
	}
}

func TestBucket_CapacityInvariant(t *testing.T) {
	// N consumos contra um bucket fresco de capacidade C, sem tempo passar:
	// exatamente min(N, C) passam
	const capacity, attempts = 3, 10
	now := time.Now()
	b := NewBucket(minuteSet(capacity), now)

	allowed := 0
	for i := 0; i < attempts; i++ {
		if b.Consume(now).Allowed {
			allowed++
		}
	}
	if allowed != capacity {
		t.Fatalf("expected %d allowed, got %d", capacity, allowed)
	}
}

func TestBucket_RemainingDecreases(t *testing.T) {
	now := time.Now()
	b := NewBucket(minuteSet(5), now)

	res := b.Consume(now)
	if !res.Allowed {
		t.Fatalf("expected first consume to be allowed")
	}
	if res.Remaining != 4 {
		t.Fatalf("expected remaining=4 on first use, got %d", res.Remaining)
	}
	if res.Capacity != 5 {
		t.Fatalf("expected capacity=5, got %d", res.Capacity)
	}
	if !res.ResetAt.After(now) {
		t.Fatalf("expected reset in the future")
	}
}

func TestBucket_RefillRestoresCapacity(t *testing.T) {
	now := time.Now()
	b := NewBucket(minuteSet(2), now)

	b.Consume(now)
	b.Consume(now)
	if b.Consume(now).Allowed {
		t.Fatalf("expected exhausted bucket to deny")
	}

	// avançando o relógio injetado em um período restaura a capacidade
	later := now.Add(time.Minute)
	allowed := 0
	for i := 0; i < 3; i++ {
		if b.Consume(later).Allowed {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("expected 2 allowed after refill, got %d", allowed)
	}
}

func TestBucket_PartialRefillNonGreedy(t *testing.T) {
	// refill customizado: 1 token a cada 10s, capacidade 3
	set := domain.BandwidthSet{
		{Name: "slow", Capacity: 3, RefillTokens: 1, RefillPeriod: 10 * time.Second},
	}
	now := time.Now()
	b := NewBucket(set, now)

	for i := 0; i < 3; i++ {
		b.Consume(now)
	}
	if b.Consume(now).Allowed {
		t.Fatalf("expected empty bucket to deny")
	}

	// 25s = 2 intervalos completos = 2 tokens
	later := now.Add(25 * time.Second)
	allowed := 0
	for i := 0; i < 4; i++ {
		if b.Consume(later).Allowed {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("expected 2 tokens after 25s, got %d", allowed)
	}
}

func TestBucket_ComposedLimitsAllOrNothing(t *testing.T) {
	// 2/minuto E 3/hora: a terceira no mesmo minuto nega pela regra do
	// minuto sem debitar a da hora
	set := domain.BandwidthSet{
		{Name: "per-minute", Capacity: 2, RefillTokens: 2, RefillPeriod: time.Minute},
		{Name: "per-hour", Capacity: 3, RefillTokens: 3, RefillPeriod: time.Hour},
	}
	now := time.Now()
	b := NewBucket(set, now)

	b.Consume(now)
	b.Consume(now)
	if b.Consume(now).Allowed {
		t.Fatalf("expected per-minute limit to deny third consume")
	}

	// após o refill do minuto, sobra exatamente 1 token na regra da hora
	later := now.Add(time.Minute)
	res := b.Consume(later)
	if !res.Allowed {
		t.Fatalf("expected consume after minute refill to be allowed")
	}
	if res.Remaining != 0 {
		t.Fatalf("expected hourly rule to be binding with remaining=0, got %d", res.Remaining)
	}
	if res.Capacity != 3 {
		t.Fatalf("expected binding capacity 3 (hourly), got %d", res.Capacity)
	}
	if b.Consume(later).Allowed {
		t.Fatalf("expected hourly limit to deny: all-or-nothing must not have leaked tokens")
	}
}

func TestBucket_DeniedCarriesRetryAfter(t *testing.T) {
	now := time.Now()
	b := NewBucket(minuteSet(1), now)
	b.Consume(now)

	res := b.Consume(now.Add(10 * time.Second))
	if res.Allowed {
		t.Fatalf("expected deny")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %s", res.RetryAfter)
	}
	if res.RetryAfter > time.Minute {
		t.Fatalf("retry-after longer than the refill period: %s", res.RetryAfter)
	}
	if res.Capacity != 1 {
		t.Fatalf("expected capacity of the restrictive rule, got %d", res.Capacity)
	}
}

func TestBucket_InitialTokensBelowCapacity(t *testing.T) {
	set := domain.BandwidthSet{
		{Name: "warmup", Capacity: 10, RefillTokens: 10, RefillPeriod: time.Minute, InitialTokens: 2},
	}
	now := time.Now()
	b := NewBucket(set, now)

	allowed := 0
	for i := 0; i < 5; i++ {
		if b.Consume(now).Allowed {
			allowed++
		}
	}
	if allowed != 2 {
		t.Fatalf("expected initial tokens to cap first burst at 2, got %d", allowed)
	}
}

func TestBucket_NoDoubleSpendUnderConcurrency(t *testing.T) {
	// M goroutines contra um bucket de capacidade C: exatamente C passam
	const capacity, goroutines = 10, 50
	now := time.Now()
	b := NewBucket(minuteSet(capacity), now)

	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- b.Consume(now).Allowed
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	allowed := 0
	for ok := range results {
		if ok {
			allowed++
		}
	}
	if allowed != capacity {
		t.Fatalf("expected exactly %d allowed under concurrency, got %d", capacity, allowed)
	}
}

func TestBucket_LargeElapsedDoesNotOverflow(t *testing.T) {
	now := time.Now()
	b := NewBucket(minuteSet(5), now)
	for i := 0; i < 5; i++ {
		b.Consume(now)
	}

	// anos depois: só volta a encher, nunca passa da capacidade
	res := b.Consume(now.Add(24 * 365 * 10 * time.Hour))
	if !res.Allowed {
		t.Fatalf("expected allow after long idle")
	}
	if res.Remaining != 4 {
		t.Fatalf("expected remaining=4 (full minus one), got %d", res.Remaining)
	}
}
