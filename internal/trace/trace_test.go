package trace_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/icanthink42/alpha-solve-analytical/internal/trace"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := trace.NewLogger(trace.LoggerConfig{Level: trace.LogLevelWarn, Output: &buf, Prefix: "test"})

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown warn")
	l.Error("shown error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("low-severity messages leaked: %q", out)
	}
	if !strings.Contains(out, "shown warn") || !strings.Contains(out, "shown error") {
		t.Errorf("expected warn and error in output: %q", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := trace.NewLogger(trace.LoggerConfig{Level: trace.LogLevelDebug, Output: &buf})

	l.WithField("cell", "abc").Info("message")
	if !strings.Contains(buf.String(), "cell=abc") {
		t.Errorf("missing field: %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]trace.LogLevel{
		"debug":   trace.LogLevelDebug,
		"INFO":    trace.LogLevelInfo,
		"warning": trace.LogLevelWarn,
		"ERROR":   trace.LogLevelError,
		"bogus":   trace.LogLevelInfo,
	}
	for in, want := range tests {
		if got := trace.ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogTracerEvents(t *testing.T) {
	var buf bytes.Buffer
	l := trace.NewLogger(trace.LoggerConfig{Level: trace.LogLevelDebug, Output: &buf})
	tr := trace.NewLogTracer(l)

	tr.ProbeDecision("c1", "solve", true, 100, "")
	tr.MatchFound("c1", "solve", 100)
	tr.RewriteApplied("c1", "integrals", "a", "b")
	tr.ResolutionFailed("c1", "integrals", "unbalanced braces")

	out := buf.String()
	for _, want := range []string{"probe:", "selected at priority 100", "rewrite:", "resolution failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output: %q", want, out)
		}
	}
}

func TestNopTracerIsSafe(t *testing.T) {
	var tr trace.Tracer = trace.NopTracer{}
	tr.ProbeDecision("", "", false, 0, "")
	tr.MatchFound("", "", 0)
	tr.RewriteApplied("", "", "", "")
	tr.ResolutionFailed("", "", "")
}
