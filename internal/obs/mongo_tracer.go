package obs

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MongoTracer creates a span per MongoDB command. The driver reports start
// and finish as separate events, so open spans are keyed by request id.
type MongoTracer struct {
	spans sync.Map
}

// Monitor returns the command monitor to install on the client options.
func (t *MongoTracer) Monitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started:   t.started,
		Succeeded: t.succeeded,
		Failed:    t.failed,
	}
}

func (t *MongoTracer) started(ctx context.Context, evt *event.CommandStartedEvent) {
	_, span := otel.Tracer("db.mongo").Start(ctx, "mongo."+evt.CommandName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", "mongodb"),
		attribute.String("db.name", evt.DatabaseName),
		attribute.String("db.operation", evt.CommandName),
	)
	t.spans.Store(evt.RequestID, span)
}

func (t *MongoTracer) succeeded(_ context.Context, evt *event.CommandSucceededEvent) {
	t.end(evt.RequestID, nil)
}

func (t *MongoTracer) failed(_ context.Context, evt *event.CommandFailedEvent) {
	t.end(evt.RequestID, errors.New(evt.Failure))
}

func (t *MongoTracer) end(requestID int64, err error) {
	v, ok := t.spans.LoadAndDelete(requestID)
	if !ok {
		return
	}
	span := v.(trace.Span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
