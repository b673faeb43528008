package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/signalsfoundry/plant-ots/model"
)

// LoadPlantConfig decodes a plant configuration from JSON and validates it.
// Only the plant type is mandatory in the document: every other section
// defaults to the built-in configuration for that type, so a file can
// override just the pieces it cares about.
func LoadPlantConfig(r io.Reader) (*model.PlantConfig, error) {
	var doc struct {
		Type model.PlantType `json:"type"`
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read plant config: %w", err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse plant config: %w", err)
	}

	cfg, err := DefaultConfigFor(doc.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse plant config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPlantConfigFile loads and validates a plant configuration from disk.
func LoadPlantConfigFile(path string) (*model.PlantConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plant config: %w", err)
	}
	defer f.Close()
	return LoadPlantConfig(f)
}

// DefaultConfigFor returns the built-in configuration for a plant type.
func DefaultConfigFor(t model.PlantType) (*model.PlantConfig, error) {
	switch t {
	case model.PlantColumn:
		return model.DefaultColumnConfig(), nil
	case model.PlantExchanger:
		return model.DefaultExchangerConfig(), nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownPlantType, t)
	}
}
