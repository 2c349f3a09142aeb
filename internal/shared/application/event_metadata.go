// Package application holds helpers shared by the application services.
package application

import (
	"context"

	"github.com/felixgeelhaar/flowstate/internal/shared/domain"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata creates metadata for events raised while handling ctx.
// The correlation id follows the request; the causation id is the request
// id. Either is generated when ctx carries none.
func NewEventMetadata(ctx context.Context) domain.EventMetadata {
	return domain.EventMetadata{
		CorrelationID: idFrom(observability.CorrelationIDFromContext(ctx)),
		CausationID:   idFrom(observability.RequestIDFromContext(ctx)),
	}
}

// ApplyEventMetadata sets metadata on all events that support it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}

func idFrom(value string) uuid.UUID {
	if id, err := uuid.Parse(value); err == nil {
		return id
	}
	return uuid.New()
}
