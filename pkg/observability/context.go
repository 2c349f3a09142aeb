package observability

import (
	"context"

	"github.com/google/uuid"
)

// Surfaces that start work in FlowState.
const (
	SurfaceCLI    = "cli"
	SurfaceMCP    = "mcp"
	SurfaceWorker = "worker"
)

// Standard attribute keys used in logs and metrics.
const (
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	SurfaceKey       = "surface"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
	StatusKey        = "status"
)

// Request identifies the call being served. Events published while serving
// it carry its ids as metadata.
type Request struct {
	ID            string
	CorrelationID string
	Surface       string
}

type requestCtxKey struct{}

// NewRequestContext starts a request on surface. An empty correlationID
// starts a new correlation.
func NewRequestContext(ctx context.Context, surface, correlationID string) context.Context {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return context.WithValue(ctx, requestCtxKey{}, Request{
		ID:            uuid.NewString(),
		CorrelationID: correlationID,
		Surface:       surface,
	})
}

// RequestFromContext returns the request started on ctx, if any.
func RequestFromContext(ctx context.Context) (Request, bool) {
	if ctx == nil {
		return Request{}, false
	}
	r, ok := ctx.Value(requestCtxKey{}).(Request)
	return r, ok
}

// WithCorrelationID replaces the correlation id, keeping the rest of the
// request. An empty id generates one.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	r, _ := RequestFromContext(ctx)
	r.CorrelationID = id
	return context.WithValue(ctx, requestCtxKey{}, r)
}

// WithRequestID replaces the request id. An empty id generates one.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	r, _ := RequestFromContext(ctx)
	r.ID = id
	return context.WithValue(ctx, requestCtxKey{}, r)
}

func CorrelationIDFromContext(ctx context.Context) string {
	r, _ := RequestFromContext(ctx)
	return r.CorrelationID
}

func RequestIDFromContext(ctx context.Context) string {
	r, _ := RequestFromContext(ctx)
	return r.ID
}

func SurfaceFromContext(ctx context.Context) string {
	r, _ := RequestFromContext(ctx)
	return r.Surface
}
