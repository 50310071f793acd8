package logger

import (
	"testing"
	"time"
)

func TestParseRatio(t *testing.T) {
	tests := []struct {
		spec string
		want ratio
		ok   bool
	}{
		{"", defaultDebugRatio, true},
		{"off", ratio{}, true},
		{"0", ratio{}, true},
		{"10", ratio{keep: 1, n: 10}, true},
		{"2/5", ratio{keep: 2, n: 5}, true},
		{"3:4", ratio{keep: 3, n: 4}, true},
		{"9/5", ratio{keep: 5, n: 5}, true},
		{"0/5", ratio{}, false},
		{"x/5", ratio{}, false},
		{"often", ratio{}, false},
	}
	for _, tt := range tests {
		got, ok := parseRatio(tt.spec)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("parseRatio(%q) = %+v, %v; want %+v, %v", tt.spec, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSamplerWindow(t *testing.T) {
	s := newSampler(ratio{keep: 2, n: 5})
	var passed int
	for i := 0; i < 20; i++ {
		if s.allow() {
			passed++
		}
	}
	if passed != 8 {
		t.Fatalf("passed = %d, want 8", passed)
	}

	s.set(ratio{})
	for i := 0; i < 5; i++ {
		if !s.allow() {
			t.Fatal("disabled sampler must let everything through")
		}
	}
}

func TestPreview(t *testing.T) {
	files := []string{"0001_init.up.sql", "0002_tickets.up.sql", "0003_leads.up.sql"}
	if got := Preview(files, 5); got != "0001_init.up.sql, 0002_tickets.up.sql, 0003_leads.up.sql" {
		t.Fatalf("Preview = %q", got)
	}
	if got := Preview(files, 1); got != "0001_init.up.sql (+2)" {
		t.Fatalf("Preview = %q", got)
	}
	if got := Preview(nil, 3); got != "" {
		t.Fatalf("Preview(nil) = %q", got)
	}
}

func TestRoundMS(t *testing.T) {
	if got := RoundMS(1499 * time.Microsecond); got != time.Millisecond {
		t.Fatalf("RoundMS = %v", got)
	}
	if got := RoundMS(-time.Second); got != 0 {
		t.Fatalf("RoundMS(negative) = %v", got)
	}
}
