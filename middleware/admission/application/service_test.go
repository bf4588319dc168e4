package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"admission-gateway/middleware/admission/domain"
	"admission-gateway/middleware/admission/infra"
)

// scriptedConsumer devolve sempre o mesmo veredito (ou erro).
type scriptedConsumer struct {
	res   domain.Result
	err   error
	calls int
}

func (c *scriptedConsumer) ConsumeToken(domain.Key, domain.Strategy, string) (domain.Result, error) {
	c.calls++
	return c.res, c.err
}

type failingSink struct{ calls int }

func (s *failingSink) Publish(context.Context, domain.DeniedEvent) error {
	s.calls++
	return errors.New("sink indisponível")
}

func TestService_NoEventWhenAllowed(t *testing.T) {
	sink := infra.NewMemoryEventSink()
	svc := Service{
		Limiter: &scriptedConsumer{res: domain.Result{Allowed: true, Remaining: 9, Capacity: 10}},
		Events:  sink,
	}

	res, err := svc.ConsumeToken(context.Background(), "k", domain.StrategyAuth, "", "/api/auth")
	if err != nil {
		t.Fatalf("ConsumeToken: %v", err)
	}
	if !res.Allowed {
		t.Fatal("expected allowed")
	}
	if got := len(sink.Events()); got != 0 {
		t.Fatalf("allowed não pode publicar evento, got %d", got)
	}
}

func TestService_PublishesDeniedEvent(t *testing.T) {
	sink := infra.NewMemoryEventSink()
	svc := Service{
		Limiter: &scriptedConsumer{res: domain.Result{Allowed: false, Capacity: 10, RetryAfter: 30 * time.Second}},
		Events:  sink,
	}

	res, err := svc.ConsumeToken(context.Background(), "alice", domain.StrategyResume, "", "/api/resume")
	if err != nil {
		t.Fatalf("ConsumeToken: %v", err)
	}
	if res.Allowed {
		t.Fatal("expected denied")
	}

	events := sink.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.ID == "" {
		t.Fatal("event ID must be set")
	}
	if ev.Key != "alice" || ev.Strategy != domain.StrategyResume || ev.Endpoint != "/api/resume" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Window != 30*time.Second {
		t.Fatalf("expected window 30s, got %s", ev.Window)
	}
	if ev.At.IsZero() {
		t.Fatal("event timestamp must be set")
	}
}

func TestService_LimiterErrorPropagates(t *testing.T) {
	sink := infra.NewMemoryEventSink()
	boom := &domain.ConfigurationError{Strategy: domain.StrategyAuth, Violations: []string{"no policy configured"}}
	svc := Service{Limiter: &scriptedConsumer{err: boom}, Events: sink}

	_, err := svc.ConsumeToken(context.Background(), "k", domain.StrategyAuth, "", "/api/auth")
	if !errors.Is(err, boom) {
		t.Fatalf("expected limiter error to propagate, got %v", err)
	}
	if got := len(sink.Events()); got != 0 {
		t.Fatalf("erro não pode virar evento de negação, got %d", got)
	}
}

func TestService_SinkFailureIsBestEffort(t *testing.T) {
	sink := &failingSink{}
	var logged []string
	svc := Service{
		Limiter: &scriptedConsumer{res: domain.Result{Allowed: false, RetryAfter: time.Second}},
		Events:  sink,
		Logf: func(format string, args ...any) {
			logged = append(logged, fmt.Sprintf(format, args...))
		},
	}

	res, err := svc.ConsumeToken(context.Background(), "k", domain.StrategyWaitlist, "", "/api/waitlist")
	if err != nil {
		t.Fatalf("falha do sink não pode virar erro do chamador: %v", err)
	}
	if res.Allowed {
		t.Fatal("denial must stand even when the sink fails")
	}
	if sink.calls != 1 {
		t.Fatalf("expected 1 publish attempt, got %d", sink.calls)
	}
	if len(logged) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(logged))
	}
}

func TestService_NilLimiterAllows(t *testing.T) {
	svc := Service{}
	res, err := svc.ConsumeToken(context.Background(), "k", domain.StrategyAuth, "", "/api/auth")
	if err != nil {
		t.Fatalf("ConsumeToken: %v", err)
	}
	if !res.Allowed {
		t.Fatal("nil limiter should fail open")
	}
}
