package domain

import (
	"testing"
	"time"
)

func TestBandwidth_Validate_CollectsAllViolations(t *testing.T) {
	b := Bandwidth{Name: "bad", Capacity: 0, RefillTokens: -1, RefillPeriod: 0}
	violations := b.Validate()
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", len(violations), violations)
	}
}

func TestBandwidth_Validate_InitialTokensAboveCapacity(t *testing.T) {
	b := Bandwidth{Name: "x", Capacity: 5, RefillTokens: 5, RefillPeriod: time.Minute, InitialTokens: 6}
	violations := b.Validate()
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %v", violations)
	}
}

func TestBandwidth_Validate_OK(t *testing.T) {
	b := Bandwidth{Name: "ok", Capacity: 10, RefillTokens: 10, RefillPeriod: time.Minute}
	if violations := b.Validate(); len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}

func TestBandwidthSet_Validate_RequiresAtLeastOne(t *testing.T) {
	var s BandwidthSet
	if violations := s.Validate(); len(violations) != 1 {
		t.Fatalf("expected exactly one violation for empty set, got %v", violations)
	}
}
