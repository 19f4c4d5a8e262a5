package env

import "testing"

func TestGetPrefersPrefixedName(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("PRICECOMPARE_LOG_FORMAT", "console")

	if got := Get("LOG_FORMAT", "x"); got != "console" {
		t.Fatalf("expected prefixed value, got %q", got)
	}
}

func TestGetFallsBack(t *testing.T) {
	t.Setenv("PRICECOMPARE_MISSING_KEY", "")
	t.Setenv("MISSING_KEY", "")

	if got := Get("MISSING_KEY", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("PRICECOMPARE_LOG_NO_COLOR", "true")
	if !Bool("LOG_NO_COLOR", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("PRICECOMPARE_LOG_NO_COLOR", "maybe")
	if !Bool("LOG_NO_COLOR", true) {
		t.Fatalf("expected fallback on invalid value")
	}
}
