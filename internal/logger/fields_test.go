package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  candidate_role  ", Value: "  Data Engineer  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "candidate_role" || fields[0].String != "Data Engineer" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String(FieldRun, "run-1"))
	enriched.Info("batch started")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if got := entries[0].ContextMap()[FieldRun]; got != "run-1" {
		t.Fatalf("expected run id run-1, got %q", got)
	}

	enriched = WithFields(nil, zap.String(FieldPair, "p-1"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Logging through the fallback logger must not panic.
	enriched.Info("another log")
}

func TestMatchFields(t *testing.T) {
	fields := MatchFields("Backend Engineer", " Senior Go Developer ")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldCandidate || fields[0].String != "Backend Engineer" {
		t.Fatalf("unexpected candidate field: %+v", fields[0])
	}

	if fields[1].Key != FieldRequirement || fields[1].String != "Senior Go Developer" {
		t.Fatalf("unexpected requirement field: %+v", fields[1])
	}

	if partial := MatchFields("", "Analyst"); len(partial) != 1 || partial[0].Key != FieldRequirement {
		t.Fatalf("expected only the requirement field, got %+v", partial)
	}
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	enriched := WithCommonFields(zap.New(core), "gemini", "gemini-2.5-flash")
	enriched.Info("extraction request")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider field to be gemini, got %q", ctx[FieldProvider])
	}
	if ctx[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("expected model field, got %q", ctx[FieldModel])
	}

	if empty := CommonFields("", ""); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		json, debug bool
	}{
		{false, false},
		{true, true},
	} {
		logger, err := New(tc.json, tc.debug)
		if err != nil {
			t.Fatalf("New(%v, %v): %v", tc.json, tc.debug, err)
		}
		if got := logger.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
			t.Fatalf("debug enabled = %v, want %v", got, tc.debug)
		}
	}
}
