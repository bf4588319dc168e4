package domain

import (
	"encoding/json"
	"testing"
)

func TestParseStrategy_RoundTrip(t *testing.T) {
	for _, st := range Strategies() {
		parsed, err := ParseStrategy(st.String())
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", st, err)
		}
		if parsed != st {
			t.Fatalf("round trip mismatch: %s -> %s", st, parsed)
		}
	}
	if _, err := ParseStrategy("pdf"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestStrategy_OnlyBusinessIsTiered(t *testing.T) {
	for _, st := range Strategies() {
		if got, want := st.Tiered(), st == StrategyBusiness; got != want {
			t.Fatalf("strategy %s: Tiered()=%v, want %v", st, got, want)
		}
	}
}

func TestStrategy_JSONUsesName(t *testing.T) {
	data, err := json.Marshal(StrategyResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"resume"` {
		t.Fatalf("expected %q, got %s", `"resume"`, data)
	}

	var st Strategy
	if err := json.Unmarshal([]byte(`"waitlist"`), &st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != StrategyWaitlist {
		t.Fatalf("expected waitlist, got %s", st)
	}
}

func TestStrategy_DeniedMessageNeverEmpty(t *testing.T) {
	for _, st := range Strategies() {
		if st.DeniedMessage() == "" {
			t.Fatalf("strategy %s has empty denied message", st)
		}
	}
}
