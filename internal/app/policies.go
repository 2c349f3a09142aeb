package app

import (
	"fmt"

	notifications "github.com/felixgeelhaar/flowstate/internal/notifications/domain"
	"github.com/felixgeelhaar/flowstate/internal/triggers/domain"
	"github.com/felixgeelhaar/flowstate/pkg/config"
)

// TriggerPolicies applies TRIGGER_BREATHE_ENABLED and the YAML overrides on
// top of the default policies. The YAML file wins over the environment.
func TriggerPolicies(cfg *config.Config) (map[notifications.Kind]domain.Policy, error) {
	policies := domain.DefaultPolicies()

	breathe := policies[notifications.KindBreathe]
	breathe.Enabled = cfg.BreatheEnabled
	policies[notifications.KindBreathe] = breathe

	for name, override := range cfg.Triggers {
		kind := notifications.Kind(name)
		p, ok := policies[kind]
		if !ok {
			return nil, fmt.Errorf("trigger config: %w: %q", notifications.ErrUnknownKind, name)
		}
		if override.Interval != nil {
			p.Interval = *override.Interval
		}
		if override.Cooldown != nil {
			p.Cooldown = *override.Cooldown
		}
		if override.Enabled != nil {
			p.Enabled = *override.Enabled
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("trigger config: %w", err)
		}
		policies[kind] = p
	}
	return policies, nil
}
