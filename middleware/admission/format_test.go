package admission

import (
	"testing"
	"time"
)

func TestFormatCeilSeconds(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0"},
		{-time.Second, "0"},
		{time.Millisecond, "1"}, // arredonda para cima: nunca "0" com bucket vazio
		{time.Second, "1"},
		{1500 * time.Millisecond, "2"},
		{59*time.Second + time.Nanosecond, "60"},
		{time.Minute, "60"},
	}
	for _, c := range cases {
		if got := formatCeilSeconds(c.in); got != c.want {
			t.Errorf("formatCeilSeconds(%s) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/api/auth", "/api/auth"},
		{"/api/auth/", "/api/auth"},
		{"/api/auth//", "/api/auth"},
		{"/", "/"},
		{"", "/"},
	}
	for _, c := range cases {
		if got := normalizePath(c.in); got != c.want {
			t.Errorf("normalizePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
