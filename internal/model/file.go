package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfiguration reads a YAML widget configuration file.
func LoadConfiguration(path string) (Configuration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("read widget config %s: %w", path, err)
	}
	return ParseConfiguration(raw)
}

func ParseConfiguration(raw []byte) (Configuration, error) {
	var cfg Configuration
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Configuration{}, fmt.Errorf("decode widget config: %w", err)
	}
	return cfg, nil
}
