package gpustate

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestNopHandler(t *testing.T) {
	h := nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = true, want false", level)
		}
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("Handle() = %v, want nil", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.String("stage", "pixel")}).(nopHandler); !ok {
		t.Error("WithAttrs() did not return a nopHandler")
	}
	if _, ok := h.WithGroup("hazard").(nopHandler); !ok {
		t.Error("WithGroup() did not return a nopHandler")
	}
}

func TestLoggerSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	tests := []struct {
		name  string
		setup func()
	}{
		{"default", func() {}},
		{"reset with nil", func() {
			SetLogger(slog.Default())
			SetLogger(nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLogger(orig)
			tt.setup()
			l := Logger()
			if l == nil {
				t.Fatal("Logger() = nil")
			}
			if l.Enabled(context.Background(), slog.LevelError) {
				t.Error("logger enabled at error level, want silent")
			}
		})
	}
}

func TestSetLoggerRoutesRecords(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	SetLogger(custom)
	if Logger() != custom {
		t.Fatal("Logger() did not return the logger set via SetLogger")
	}

	Logger().Debug("gpustate: hazard resolved, input unbound", "stage", StagePixel, "slot", 0)
	Logger().Warn("gpustate: native entry point unavailable, call skipped", "capability", CapGeometryShader)

	out := buf.String()
	if strings.Contains(out, "hazard resolved") {
		t.Errorf("debug record passed a warn-level handler:\n%s", out)
	}
	if !strings.Contains(out, "capability=geometry-shader") {
		t.Errorf("warning lost the capability attribute:\n%s", out)
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	const goroutines = 100
	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l := Logger()
			if l == nil {
				t.Error("Logger() returned nil during concurrent access")
				return
			}
			l.Debug("concurrent read")
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
			SetLogger(nil)
		}()
	}
	wg.Wait()
}

func BenchmarkLoggerDisabledHazard(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("gpustate: hazard resolved, input unbound", "stage", StagePixel, "slot", 4)
	}
}
