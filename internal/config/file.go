package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the variable that points at a YAML config file.
const ConfigPathEnv = "ACTIVITYMON_CONFIG"

// durationKeys hold time.Duration values. A bare integer under one of them
// is a number of seconds.
var durationKeys = map[string]bool{
	"poll_interval": true,
	"timeout":       true,
	"retention":     true,
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	if root.Kind == 0 {
		return nil
	}

	secondsToDurations(&root)
	if err := root.Decode(cfg); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

func secondsToDurations(n *yaml.Node) {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if durationKeys[key.Value] && val.Kind == yaml.ScalarNode && val.ShortTag() == "!!int" {
				val.Value += "s"
				val.Tag = "!!str"
			}
		}
	}
	for _, child := range n.Content {
		secondsToDurations(child)
	}
}

// Load builds the effective configuration: defaults, then the YAML file
// (path, or $ACTIVITYMON_CONFIG when path is empty), then environment
// variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	LoadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
