package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  resume_file  ", Value: "  cv.pdf  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "resume_file" || fields[0].String != "cv.pdf" {
		t.Fatalf("unexpected file field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	enriched.Info("another log")
}

func TestFileFields(t *testing.T) {
	fields := FileFields("  cv.docx  ", "application/pdf")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldFile || fields[0].String != "cv.docx" {
		t.Fatalf("unexpected file field: %+v", fields[0])
	}

	if fields[1].Key != FieldMIME || fields[1].String != "application/pdf" {
		t.Fatalf("unexpected mime field: %+v", fields[1])
	}

	if empty := FileFields("", ""); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFileFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	WithFileFields(logger, "cv.pdf", "application/pdf").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldFile] != "cv.pdf" {
		t.Fatalf("expected file field to be cv.pdf, got %q", ctx[FieldFile])
	}

	if ctx[FieldMIME] != "application/pdf" {
		t.Fatalf("expected mime field, got %q", ctx[FieldMIME])
	}

	if WithFileFields(nil, "cv.pdf", "") == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
}
