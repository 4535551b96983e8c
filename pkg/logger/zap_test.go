package logger_test

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Gunvolt24/orderstore/pkg/ctxmeta"
	"github.com/Gunvolt24/orderstore/pkg/logger"
)

func newObserved(level zapcore.Level) (*logger.ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logger.New(zap.New(core)), logs
}

func TestZapLogger_ContextFields(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)

	ctx := ctxmeta.WithRequestID(context.Background(), "req-1")
	ctx = ctxmeta.WithOrderID(ctx, "X-1")
	log.Infof(ctx, "order created items=%d", 2)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Message != "order created items=2" {
		t.Fatalf("message = %q", e.Message)
	}
	fields := e.ContextMap()
	if fields["request_id"] != "req-1" || fields["order_id"] != "X-1" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if _, ok := fields["trace_id"]; ok {
		t.Fatalf("trace_id must be absent without a span: %v", fields)
	}
}

func TestZapLogger_Levels(t *testing.T) {
	log, logs := newObserved(zapcore.WarnLevel)
	ctx := context.Background()

	log.Infof(ctx, "dropped")
	log.Warnf(ctx, "warn %s", "a")
	log.Errorf(ctx, "error %s", "b")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("want 2 entries above info, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel || entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("unexpected levels: %v, %v", entries[0].Level, entries[1].Level)
	}
	if len(entries[0].Context) != 0 {
		t.Fatalf("no fields expected for a bare context, got %v", entries[0].Context)
	}
}

func TestNewWithLevel(t *testing.T) {
	if _, _, err := logger.NewWithLevel(true, "verbose"); err == nil {
		t.Fatal("unknown level must fail")
	}
	log, cleanup, err := logger.NewWithLevel(true, "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = cleanup() }()

	if log.Base().Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info must be disabled at warn level")
	}
}
