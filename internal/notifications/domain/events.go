package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/flowstate/internal/shared/domain"
	"github.com/google/uuid"
)

const aggregateType = "Notification"

const (
	RoutingKeyShown     = "notifications.notification.shown"
	RoutingKeyDismissed = "notifications.notification.dismissed"
	RoutingKeySnoozed   = "notifications.notification.snoozed"
)

// DismissReason says why a notification left the active set.
type DismissReason string

const (
	DismissExplicit DismissReason = "explicit"
	DismissExpired  DismissReason = "expired"
	DismissCleared  DismissReason = "cleared"
	DismissSnoozed  DismissReason = "snoozed"
	DismissShutdown DismissReason = "shutdown"
)

// notificationNamespace scopes the aggregate ids derived from notification ids.
var notificationNamespace = uuid.MustParse("6f1c2a4e-5b0d-4c8e-9a57-3e2f1d0b9c64")

// AggregateID maps a notification id onto a stable event aggregate id.
func AggregateID(notificationID string) uuid.UUID {
	return uuid.NewSHA1(notificationNamespace, []byte(notificationID))
}

// NotificationShown is emitted when a notification enters the active set.
type NotificationShown struct {
	sharedDomain.BaseEvent
	NotificationID string        `json:"notification_id"`
	Kind           Kind          `json:"kind"`
	Title          string        `json:"title"`
	Duration       time.Duration `json:"duration"`
}

// NewNotificationShown creates a NotificationShown event.
func NewNotificationShown(n *Notification) *NotificationShown {
	return &NotificationShown{
		BaseEvent:      sharedDomain.NewBaseEventAt(AggregateID(n.ID), aggregateType, RoutingKeyShown, n.CreatedAt),
		NotificationID: n.ID,
		Kind:           n.Kind,
		Title:          n.Title,
		Duration:       n.Duration,
	}
}

// NotificationDismissed is emitted when a notification leaves the active set.
type NotificationDismissed struct {
	sharedDomain.BaseEvent
	NotificationID string        `json:"notification_id"`
	Kind           Kind          `json:"kind"`
	Reason         DismissReason `json:"reason"`
}

// NewNotificationDismissed creates a NotificationDismissed event.
func NewNotificationDismissed(n *Notification, reason DismissReason, at time.Time) *NotificationDismissed {
	return &NotificationDismissed{
		BaseEvent:      sharedDomain.NewBaseEventAt(AggregateID(n.ID), aggregateType, RoutingKeyDismissed, at),
		NotificationID: n.ID,
		Kind:           n.Kind,
		Reason:         reason,
	}
}

// NotificationSnoozed is emitted when a notification is snoozed.
type NotificationSnoozed struct {
	sharedDomain.BaseEvent
	NotificationID string    `json:"notification_id"`
	Kind           Kind      `json:"kind"`
	RefireAt       time.Time `json:"refire_at"`
}

// NewNotificationSnoozed creates a NotificationSnoozed event.
func NewNotificationSnoozed(n *Notification, at, refireAt time.Time) *NotificationSnoozed {
	return &NotificationSnoozed{
		BaseEvent:      sharedDomain.NewBaseEventAt(AggregateID(n.ID), aggregateType, RoutingKeySnoozed, at),
		NotificationID: n.ID,
		Kind:           n.Kind,
		RefireAt:       refireAt,
	}
}
