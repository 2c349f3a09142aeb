package mcp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	notifications "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// NotificationDTO is an active notification as seen by MCP clients.
type NotificationDTO struct {
	ID         string      `json:"id"`
	Kind       string      `json:"kind"`
	Title      string      `json:"title"`
	Message    string      `json:"message"`
	Icon       string      `json:"icon"`
	CreatedAt  time.Time   `json:"created_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
	DurationMs int64       `json:"duration_ms"`
	Actions    []ActionDTO `json:"actions"`
}

// ActionDTO is a notification button.
type ActionDTO struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Variant string `json:"variant,omitempty"`
}

func toNotificationDTO(n notifications.Notification) NotificationDTO {
	actions := make([]ActionDTO, 0, len(n.Actions))
	for _, a := range n.Actions {
		actions = append(actions, ActionDTO{ID: a.ID, Label: a.Label, Variant: string(a.Variant)})
	}
	return NotificationDTO{
		ID:         n.ID,
		Kind:       string(n.Kind),
		Title:      n.Title,
		Message:    n.Message,
		Icon:       n.Icon,
		CreatedAt:  n.CreatedAt,
		ExpiresAt:  n.ExpiresAt(),
		DurationMs: n.Duration.Milliseconds(),
		Actions:    actions,
	}
}

func toNotificationDTOs(active []notifications.Notification) []NotificationDTO {
	out := make([]NotificationDTO, 0, len(active))
	for _, n := range active {
		out = append(out, toNotificationDTO(n))
	}
	return out
}

func requireID(value, name string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}

func parseDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, value, fallback.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return parsed, nil
}

func parseTimeOnDate(date time.Time, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("start time is required")
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format, use HH:MM: %w", err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}
