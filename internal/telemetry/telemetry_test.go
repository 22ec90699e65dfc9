package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: FormatJSON, Output: &buf, Level: slog.LevelInfo})
	logger.Info("block committed", "position", 1)

	out := buf.String()
	if !strings.Contains(out, `"msg":"block committed"`) {
		t.Errorf("expected JSON output to contain the log message, got %q", out)
	}
	if !strings.Contains(out, `"component":"ledgerchain"`) {
		t.Errorf("expected JSON output to carry the component attribute, got %q", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: FormatJSON, Output: &buf})

	ctx := NewContext(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("FromContext did not return the logger attached by NewContext")
	}

	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext on a bare context should fall back to a default logger, not nil")
	}
}

func TestNewMetricsRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.AppendCount.Inc()
	m.AppendDuration.Observe(0.01)
	m.ChainLength.Set(3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 7 {
		t.Errorf("expected all 7 registered metric families, got %d", len(families))
	}
}

func TestSetupTracingDisabledIsANoop(t *testing.T) {
	p, err := SetupTracing(context.Background(), TraceConfig{Enabled: false})
	if err != nil {
		t.Fatalf("SetupTracing: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on a disabled provider should be a no-op, got %v", err)
	}
}

func TestStripScheme(t *testing.T) {
	cases := map[string]string{
		"http://localhost:4318":  "localhost:4318",
		"https://collector:4318": "collector:4318",
		"localhost:4318":         "localhost:4318",
	}
	for in, want := range cases {
		if got := stripScheme(in); got != want {
			t.Errorf("stripScheme(%q) = %q, want %q", in, got, want)
		}
	}
}
