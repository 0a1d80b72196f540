package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &Logger{Zap: zap.New(core)}, logs
}

func TestInfoCarriesErrorAndFields(t *testing.T) {
	log, logs := newObservedLogger(zap.InfoLevel)

	log.Info("connected", errors.New("partial"), map[string]interface{}{"host": "localhost"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["error"] != "partial" {
		t.Fatalf("expected error field, got %#v", fields)
	}
	if fields["host"] != "localhost" {
		t.Fatalf("expected host field, got %#v", fields)
	}
}

func TestDebugSuppressedBelowLevel(t *testing.T) {
	log, logs := newObservedLogger(zap.InfoLevel)

	log.Debug("noise", nil)
	if logs.Len() != 0 {
		t.Fatalf("expected debug entry to be suppressed")
	}
}

func TestLaterFieldMapsWin(t *testing.T) {
	log, logs := newObservedLogger(zap.DebugLevel)

	log.Warn("conflict", nil,
		map[string]interface{}{"key": "first"},
		map[string]interface{}{"key": "second"})

	fields := logs.All()[0].ContextMap()
	if fields["key"] != "second" {
		t.Fatalf("expected later map to win, got %#v", fields)
	}
}

func TestNewNopDiscards(t *testing.T) {
	log := NewNop()
	// Must not panic or write anywhere.
	log.Info("ignored", nil)
	log.Error("ignored", errors.New("x"), nil)
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{Debug, Info, Warning, Error} {
		log := NewLogger(Config{Level: level, Service: "test"})
		if log == nil || log.Zap == nil {
			t.Fatalf("expected logger for level %v", level)
		}
		_ = log.Zap.Sync()
	}
}
