// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestEndSpanMarksServerErrorsOnly(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"ok", nil, codes.Unset},
		{"not found", fmt.Errorf("get product: %w", ErrNotFound), codes.Unset},
		{"invalid", ValidationError("bad id"), codes.Unset},
		{"upstream", fmt.Errorf("put object: %w", ErrUpstream), codes.Error},
	}

	for _, tt := range tests {
		ctx, span := StartSpan(context.Background(), tt.name)
		if TraceIDFromContext(ctx) == "" {
			t.Errorf("%s: no trace id on span context", tt.name)
		}
		EndSpan(span, tt.err)
	}

	ended := recorder.Ended()
	if len(ended) != len(tests) {
		t.Fatalf("ended spans = %d, want %d", len(ended), len(tests))
	}
	for i, tt := range tests {
		if got := ended[i].Status().Code; got != tt.want {
			t.Errorf("%s: status = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTraceIDWithoutSpan(t *testing.T) {
	if id := TraceIDFromContext(context.Background()); id != "" {
		t.Errorf("TraceIDFromContext() = %q, want empty", id)
	}
}
