package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/flowstate/internal/shared/infrastructure/security"
	"gopkg.in/yaml.v3"
)

// TriggerOverride replaces parts of one trigger's policy. Nil fields keep
// the default.
type TriggerOverride struct {
	Interval *time.Duration `yaml:"interval"`
	Cooldown *time.Duration `yaml:"cooldown"`
	Enabled  *bool          `yaml:"enabled"`
}

type triggerFile struct {
	Triggers map[string]TriggerOverride `yaml:"triggers"`
}

// LoadTriggerFile reads per-trigger overrides from a YAML file of the form
//
//	triggers:
//	  micro-win:
//	    interval: 60s
//	    cooldown: 10m
//	    enabled: true
func LoadTriggerFile(path string) (map[string]TriggerOverride, error) {
	data, err := security.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trigger config: %w", err)
	}
	return ParseTriggers(data)
}

// ParseTriggers decodes trigger overrides. Unknown fields are rejected.
func ParseTriggers(data []byte) (map[string]TriggerOverride, error) {
	var file triggerFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]TriggerOverride{}, nil
		}
		return nil, fmt.Errorf("parse trigger config: %w", err)
	}
	if file.Triggers == nil {
		file.Triggers = map[string]TriggerOverride{}
	}
	return file.Triggers, nil
}
