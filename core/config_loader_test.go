package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/signalsfoundry/plant-ots/model"
)

func TestLoadPlantConfigDefaults(t *testing.T) {
	cfg, err := LoadPlantConfig(strings.NewReader(`{"type": "column"}`))
	if err != nil {
		t.Fatalf("LoadPlantConfig: %v", err)
	}
	if cfg.Type != model.PlantColumn {
		t.Fatalf("type = %q, want column", cfg.Type)
	}
	if len(cfg.Actuators) != 3 {
		t.Fatalf("expected the default actuators, got %d", len(cfg.Actuators))
	}
	if cfg.Column == nil {
		t.Fatalf("column coefficients should default")
	}
}

func TestLoadPlantConfigOverridesNominal(t *testing.T) {
	cfg, err := LoadPlantConfig(strings.NewReader(`{
		"type": "column",
		"nominal": {"F_Reflux": 28.0}
	}`))
	if err != nil {
		t.Fatalf("LoadPlantConfig: %v", err)
	}
	if got := cfg.Nominal[model.TagRefluxFlow]; got != 28.0 {
		t.Fatalf("overridden reflux nominal = %v, want 28.0", got)
	}
	// Untouched keys keep their defaults.
	if got := cfg.Nominal[model.TagReboilDuty]; got != 1.2 {
		t.Fatalf("reboil nominal = %v, want default 1.2", got)
	}
}

func TestLoadPlantConfigRejectsUnknownType(t *testing.T) {
	_, err := LoadPlantConfig(strings.NewReader(`{"type": "reactor"}`))
	if !errors.Is(err, model.ErrUnknownPlantType) {
		t.Fatalf("err = %v, want ErrUnknownPlantType", err)
	}
}

func TestLoadPlantConfigRejectsBadThresholdOrdering(t *testing.T) {
	// An ESD limit below the alarm limit inverts the severity ladder.
	doc := `{
		"type": "column",
		"safety": {
			"esd": [
				{"tag": "dP_col", "limit": 0.20, "above": true, "label": "column dP", "unit": "bar", "decimals": 3}
			]
		}
	}`
	_, err := LoadPlantConfig(strings.NewReader(doc))
	if !errors.Is(err, model.ErrBadThresholds) {
		t.Fatalf("err = %v, want ErrBadThresholds", err)
	}
}

func TestLoadPlantConfigRejectsBadActuator(t *testing.T) {
	doc := `{
		"type": "heat_exchanger",
		"actuators": [
			{"setpoint": "SP_F_hot", "pv": "F_hot", "min": 0, "max": 100, "move_cap": 0, "lag": 0.5}
		]
	}`
	_, err := LoadPlantConfig(strings.NewReader(doc))
	if !errors.Is(err, model.ErrBadActuator) {
		t.Fatalf("err = %v, want ErrBadActuator", err)
	}
}

func TestLoadPlantConfigBadJSON(t *testing.T) {
	if _, err := LoadPlantConfig(strings.NewReader(`{`)); err == nil {
		t.Fatalf("malformed JSON should fail")
	}
}
