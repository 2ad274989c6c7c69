package usecase

import (
	"context"
	"strings"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("injury-monitor/internal/usecase")

// startUsecaseSpan opens a child span only when the caller already carries a
// sampled trace, so unit tests and untraced runs stay span free.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if strings.TrimSpace(name) == "" || !parent.SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func sportsAttribute(sports []injury.Sport) attribute.KeyValue {
	values := make([]string, 0, len(sports))
	for _, sport := range sports {
		values = append(values, string(sport))
	}
	return attribute.StringSlice("injury.sports", values)
}

// finishSpan marks the span failed when err is set, then ends it.
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
