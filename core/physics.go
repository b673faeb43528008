package core

import (
	"errors"
	"fmt"

	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/model"
)

var (
	ErrMissingInput = errors.New("missing actuator input")
	ErrBadConfig    = errors.New("invalid plant configuration")
)

// PhysicsModel maps (current state, applied setpoints, disturbances) to a
// tentative next state. Implementations are pure: the input maps are never
// mutated, every output value is clamped to its physical bound, and two calls
// with identical arguments return identical results.
//
// Missing scenario tags fall back to the configured defaults; a missing
// actuator setpoint is an error (ErrMissingInput).
type PhysicsModel interface {
	Step(state, inputs, scenario model.TagMap) (model.TagMap, error)
}

// NewPhysicsModel selects the physics variant for the configuration. The
// choice (including the column's vapor-liquid-equilibrium path) is made once
// here, not re-probed per call.
func NewPhysicsModel(cfg *model.PlantConfig, log logging.Logger) (PhysicsModel, error) {
	switch cfg.Type {
	case model.PlantColumn:
		return NewColumnModel(cfg, NewAntoineVLE(), log)
	case model.PlantExchanger:
		return NewExchangerModel(cfg, log)
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrBadConfig, model.ErrUnknownPlantType, cfg.Type)
	}
}

// clampTo clamps v to the configured bound for tag; tags without a bound
// pass through unchanged.
func clampTo(bounds map[model.Tag]model.Bound, tag model.Tag, v float64) float64 {
	b, ok := bounds[tag]
	if !ok {
		return v
	}
	if v < b.Lo {
		return b.Lo
	}
	if v > b.Hi {
		return b.Hi
	}
	return v
}

// requireInputs verifies every configured setpoint is present in inputs.
func requireInputs(cfg *model.PlantConfig, inputs model.TagMap) error {
	for _, a := range cfg.Actuators {
		if _, ok := inputs[a.Setpoint]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingInput, a.Setpoint)
		}
	}
	return nil
}
