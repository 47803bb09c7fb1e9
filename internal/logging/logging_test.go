package logging

import (
	"context"
	"testing"
)

func TestEnsureTrialID(t *testing.T) {
	ctx, id := EnsureTrialID(context.Background())
	if id == "" || id == "unknown" {
		t.Fatalf("trial id = %q", id)
	}
	if got := TrialIDFromContext(ctx); got != id {
		t.Fatalf("TrialIDFromContext = %q, want %q", got, id)
	}

	// A second call keeps the existing ID.
	ctx2, id2 := EnsureTrialID(ctx)
	if id2 != id {
		t.Fatalf("EnsureTrialID replaced %q with %q", id, id2)
	}
	if ctx2 != ctx {
		t.Fatal("context rebuilt despite existing trial id")
	}
}

func TestTrialIDFromContextEmpty(t *testing.T) {
	if got := TrialIDFromContext(context.Background()); got != "" {
		t.Fatalf("TrialIDFromContext on empty ctx = %q", got)
	}
	if got := TrialIDFromContext(nil); got != "" {
		t.Fatalf("TrialIDFromContext on nil ctx = %q", got)
	}
}

func TestWithTrialLoggerNilBase(t *testing.T) {
	ctx, log := WithTrialLogger(context.Background(), nil)
	if log == nil {
		t.Fatal("nil logger returned")
	}
	if TrialIDFromContext(ctx) == "" {
		t.Fatal("no trial id attached")
	}
	// Must be safe to use.
	log.Info(ctx, "noop")
}

func TestContextLoggerRoundTrip(t *testing.T) {
	base := Noop()
	ctx := ContextWithLogger(context.Background(), base)
	if got := LoggerFromContext(ctx); got != base {
		t.Fatalf("LoggerFromContext = %v, want the stored logger", got)
	}
	if got := LoggerFromContext(context.Background()); got != nil {
		t.Fatalf("LoggerFromContext on empty ctx = %v, want nil", got)
	}
}

func TestNewFromConfigLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", ""} {
		log := New(Config{Level: level, Format: "json"})
		if log == nil {
			t.Fatalf("New returned nil for level %q", level)
		}
		log.With(String("k", "v"), Int("n", 1), Any("x", 3.5)).Info(context.Background(), "ok")
	}
}
