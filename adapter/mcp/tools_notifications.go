package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"
)

type notificationIDInput struct {
	NotificationID string `json:"notification_id" jsonschema:"required"`
}

type notificationSnoozeInput struct {
	NotificationID string `json:"notification_id" jsonschema:"required"`
	Minutes        int    `json:"minutes,omitempty"`
}

type notificationInvokeInput struct {
	NotificationID string `json:"notification_id" jsonschema:"required"`
	ActionID       string `json:"action_id" jsonschema:"required"`
}

// TriggerStatusDTO is one trigger's policy and cooldown.
type TriggerStatusDTO struct {
	Kind        string     `json:"kind"`
	Enabled     bool       `json:"enabled"`
	State       string     `json:"state"`
	RemainingMs int64      `json:"remaining_ms"`
	LastFired   *time.Time `json:"last_fired,omitempty"`
	IntervalMs  int64      `json:"interval_ms"`
	CooldownMs  int64      `json:"cooldown_ms"`
}

// TriggerCheckDTO reports one evaluation of every trigger.
type TriggerCheckDTO struct {
	Outcomes      map[string]string `json:"outcomes"`
	Notifications []NotificationDTO `json:"notifications"`
}

func registerNotificationTools(srv *mcp.Server, t *toolset) error {
	srv.Tool("notifications.list").
		Description("List the notifications currently on screen, oldest first").
		Handler(traced(t.listNotifications))

	srv.Tool("notifications.dismiss").
		Description("Dismiss a notification").
		Handler(traced(t.dismissNotification))

	srv.Tool("notifications.snooze").
		Description("Snooze a notification; an equivalent one comes back after the given minutes (default 20)").
		Handler(traced(t.snoozeNotification))

	srv.Tool("notifications.invoke").
		Description("Press one of a notification's action buttons").
		Handler(traced(t.invokeNotification))

	srv.Tool("notifications.clear").
		Description("Dismiss every notification and cancel pending snoozes").
		Handler(traced(t.clearNotifications))

	srv.Tool("triggers.check").
		Description("Evaluate every enabled trigger once and return what was shown").
		Handler(traced(t.checkTriggers))

	srv.Tool("triggers.status").
		Description("Show each trigger's policy and cooldown state").
		Handler(traced(t.triggerStatus))

	return nil
}

func (t *toolset) engineReady() error {
	if t.app.Notifications == nil {
		return errors.New("notification engine not available")
	}
	return nil
}

func (t *toolset) listNotifications(_ context.Context, _ struct{}) ([]NotificationDTO, error) {
	if err := t.engineReady(); err != nil {
		return nil, err
	}
	return toNotificationDTOs(t.app.Notifications.Notifications()), nil
}

func (t *toolset) dismissNotification(ctx context.Context, input notificationIDInput) (map[string]any, error) {
	if err := t.engineReady(); err != nil {
		return nil, err
	}
	id, err := requireID(input.NotificationID, "notification_id")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"notification_id": id,
		"dismissed":       t.app.Notifications.Dismiss(ctx, id),
	}, nil
}

func (t *toolset) snoozeNotification(ctx context.Context, input notificationSnoozeInput) (map[string]any, error) {
	if err := t.engineReady(); err != nil {
		return nil, err
	}
	id, err := requireID(input.NotificationID, "notification_id")
	if err != nil {
		return nil, err
	}
	if input.Minutes < 0 {
		return nil, fmt.Errorf("minutes must not be negative")
	}
	return map[string]any{
		"notification_id": id,
		"snoozed":         t.app.Notifications.Snooze(ctx, id, time.Duration(input.Minutes)*time.Minute),
	}, nil
}

func (t *toolset) invokeNotification(ctx context.Context, input notificationInvokeInput) (map[string]any, error) {
	if err := t.engineReady(); err != nil {
		return nil, err
	}
	id, err := requireID(input.NotificationID, "notification_id")
	if err != nil {
		return nil, err
	}
	actionID, err := requireID(input.ActionID, "action_id")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"notification_id": id,
		"action_id":       actionID,
		"invoked":         t.app.Notifications.Invoke(ctx, id, actionID),
	}, nil
}

func (t *toolset) clearNotifications(ctx context.Context, _ struct{}) (map[string]any, error) {
	if err := t.engineReady(); err != nil {
		return nil, err
	}
	return map[string]any{"cleared": t.app.Notifications.ClearAll(ctx)}, nil
}

func (t *toolset) checkTriggers(ctx context.Context, _ struct{}) (*TriggerCheckDTO, error) {
	if err := t.engineReady(); err != nil {
		return nil, err
	}
	if t.app.Detector == nil {
		return nil, errors.New("trigger detector not available")
	}

	outcomes := t.app.Detector.RunAll(ctx)
	result := &TriggerCheckDTO{Outcomes: make(map[string]string, len(outcomes))}
	for kind, outcome := range outcomes {
		result.Outcomes[string(kind)] = string(outcome)
	}
	result.Notifications = toNotificationDTOs(t.app.Notifications.Notifications())
	return result, nil
}

func (t *toolset) triggerStatus(_ context.Context, _ struct{}) ([]TriggerStatusDTO, error) {
	if t.app.Detector == nil {
		return nil, errors.New("trigger detector not available")
	}

	states := t.app.Detector.States(t.app.Clock.Now())
	out := make([]TriggerStatusDTO, 0, len(states))
	for _, s := range states {
		out = append(out, TriggerStatusDTO{
			Kind:        string(s.Kind),
			Enabled:     s.Enabled,
			State:       string(s.State),
			RemainingMs: s.Remaining.Milliseconds(),
			LastFired:   s.LastFired,
			IntervalMs:  s.Interval.Milliseconds(),
			CooldownMs:  s.Cooldown.Milliseconds(),
		})
	}
	return out, nil
}
