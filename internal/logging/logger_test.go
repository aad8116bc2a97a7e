package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_Ordering(t *testing.T) {
	if LevelDebug >= LevelInfo || LevelInfo >= LevelWarn || LevelWarn >= LevelError {
		t.Fatal("expected Debug < Info < Warn < Error")
	}
}

func TestNew_DefaultConfigWritesToStderr(t *testing.T) {
	logger := New(Config{})
	if logger == nil || logger.slog == nil {
		t.Fatal("New() returned a logger with no underlying slog.Logger")
	}
	if logger.file != nil {
		t.Fatal("default Config should not open a file sink")
	}
}

func TestNew_LogDirCreatesFileSink(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "test-svc"})
	defer logger.Close()

	if logger.file == nil {
		t.Fatal("expected LogDir to open a file sink")
	}
	logger.Infof("hello %s", "world")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading log dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log file, got %d", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".log" {
		t.Fatalf("unexpected log file name %q", entries[0].Name())
	}
}

func TestLoggerQuietSuppressesStderrButNotFile(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Quiet: true})
	defer logger.Close()
	if logger.file == nil {
		t.Fatal("expected file sink even when Quiet is set")
	}
}

func TestLoggerWithAddsAttributesWithoutMutatingParent(t *testing.T) {
	parent := Default()
	child := parent.With("request_id", "abc")
	if child == parent {
		t.Fatal("With should return a distinct Logger")
	}
}

func TestLoggerCloseIsIdempotentWithoutFileSink(t *testing.T) {
	logger := Default()
	if err := logger.Close(); err != nil {
		t.Fatalf("Close on a file-less logger should be a no-op: %v", err)
	}
}

func TestStderrWantsJSONForcedByConfig(t *testing.T) {
	if !stderrWantsJSON(Config{JSON: true}) {
		t.Fatal("Config.JSON: true should always select JSON regardless of TTY detection")
	}
}

func TestNewWithBothSinksUsesDualHandler(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "test-svc"})
	defer logger.Close()

	if _, ok := logger.slog.Handler().(*dualHandler); !ok {
		t.Fatalf("expected a *dualHandler when both stderr and file sinks are active, got %T", logger.slog.Handler())
	}
}
