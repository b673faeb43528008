package core

import (
	"fmt"

	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/model"
)

// Plant owns the committed state of one plant instance and exposes the
// two-phase step protocol: Step produces a tentative next state without
// touching the committed one, and either Commit or ESDSafeState decides what
// the next committed state becomes. Plant is not safe for concurrent use; a
// session serialises access to it.
type Plant struct {
	cfg     *model.PlantConfig
	physics PhysicsModel
	state   model.TagMap
	tripped bool
}

// NewPlant validates the configuration, builds the physics variant, and seeds
// the committed state from the nominal operating point.
func NewPlant(cfg *model.PlantConfig, log logging.Logger) (*Plant, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("plant config: %w", err)
	}
	physics, err := NewPhysicsModel(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Plant{
		cfg:     cfg,
		physics: physics,
		state:   cfg.Nominal.Clone(),
	}, nil
}

// Config returns the plant's configuration.
func (p *Plant) Config() *model.PlantConfig { return p.cfg }

// State returns a copy of the committed state. Mutating the copy has no
// effect on the plant.
func (p *Plant) State() model.TagMap { return p.state.Clone() }

// Tripped reports whether an emergency shutdown has latched. A tripped plant
// rejects further steps until Reset.
func (p *Plant) Tripped() bool { return p.tripped }

var ErrPlantTripped = fmt.Errorf("plant is in emergency shutdown")

// Step runs the physics against the committed state and returns the tentative
// next state. The committed state is unchanged regardless of the outcome.
func (p *Plant) Step(inputs, scenario model.TagMap) (model.TagMap, error) {
	if p.tripped {
		return nil, ErrPlantTripped
	}
	return p.physics.Step(p.state, inputs, scenario)
}

// Commit replaces the committed state with a tentative state produced by Step.
func (p *Plant) Commit(next model.TagMap) {
	p.state = next.Clone()
}

// ESDSafeState discards the tentative state, drives the committed state
// through the configured safe-state recipe, and latches the trip. The safe
// state is derived from the last committed state, never from the rejected
// tentative one.
func (p *Plant) ESDSafeState() model.TagMap {
	safe := p.state.Clone()
	for _, action := range p.cfg.SafeState {
		cur, ok := safe[action.Tag]
		if !ok {
			continue
		}
		safe[action.Tag] = action.Apply(cur)
	}
	p.state = safe
	p.tripped = true
	return safe.Clone()
}

// Reset returns the plant to the nominal operating point and clears any
// latched trip. Used when a trainee restarts a scenario.
func (p *Plant) Reset() {
	p.state = p.cfg.Nominal.Clone()
	p.tripped = false
}
