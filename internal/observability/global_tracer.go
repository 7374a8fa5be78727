package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer("gearreport")
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		// Fallback to default tracer if not initialized
		globalTracer = otel.Tracer("gearreport")
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given service and function.
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// TraceSubmissionFunction starts a new span for a submission service function.
func TraceSubmissionFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "submission", functionName, attributes...)
}

// TraceAdminFunction starts a new span for an admin service function.
func TraceAdminFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "admin", functionName, attributes...)
}

// TraceStorageFunction starts a new span for an object storage function.
func TraceStorageFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "storage", functionName, attributes...)
}

// TraceDatabaseFunction starts a new span for a database function.
func TraceDatabaseFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "database", functionName, attributes...)
}

// AttributeSubmissionID returns a tracing attribute for a submission ID.
func AttributeSubmissionID(id string) attribute.KeyValue {
	return attribute.String("submission.id", id)
}

// AttributeStatus returns a tracing attribute for a submission status.
func AttributeStatus(status string) attribute.KeyValue {
	return attribute.String("submission.status", status)
}

// AttributeUsername returns a tracing attribute for an admin username.
func AttributeUsername(username string) attribute.KeyValue {
	return attribute.String("admin.username", username)
}

// AttributePage returns a tracing attribute for a page value.
func AttributePage(page int) attribute.KeyValue {
	return attribute.Int("page", page)
}

// AttributePageSize returns a tracing attribute for a page size value.
func AttributePageSize(size int) attribute.KeyValue {
	return attribute.Int("page_size", size)
}

// AttributeStatusFilter returns a tracing attribute for a status filter value.
func AttributeStatusFilter(statusFilter string) attribute.KeyValue {
	return attribute.String("status_filter", statusFilter)
}

// AttributeImageCount returns a tracing attribute for the number of uploaded images.
func AttributeImageCount(n int) attribute.KeyValue {
	return attribute.Int("submission.image_count", n)
}

// AttributeObjectKey returns a tracing attribute for an object storage key.
func AttributeObjectKey(key string) attribute.KeyValue {
	return attribute.String("storage.key", key)
}
