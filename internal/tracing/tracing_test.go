package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/elabx-org/identify/internal/config"
)

func TestNewExporterDisabled(t *testing.T) {
	for _, name := range []string{"", "none"} {
		exp, err := newExporter(context.Background(), config.TracingConfig{Exporter: name}, nil)
		if err != nil {
			t.Fatalf("newExporter(%q) error = %v", name, err)
		}
		if exp != nil {
			t.Errorf("newExporter(%q) = %T, want nil", name, exp)
		}
	}
}

func TestNewExporterUnknown(t *testing.T) {
	if _, err := newExporter(context.Background(), config.TracingConfig{Exporter: "zipkin"}, nil); err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingConfig{})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	exp, err := newExporter(context.Background(), config.TracingConfig{Exporter: "stdout"}, &buf)
	if err != nil {
		t.Fatalf("newExporter() error = %v", err)
	}
	tp := newProvider(exp, "identify-test")

	_, span := tp.Tracer("test").Start(context.Background(), "gravatar lookup")
	span.End()
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "gravatar lookup") {
		t.Errorf("span name missing from output:\n%s", out)
	}
	if !strings.Contains(out, "identify-test") {
		t.Errorf("service name missing from output:\n%s", out)
	}
}
