package control

import (
	"context"
	"fmt"
	"math"

	"github.com/signalsfoundry/plant-ots/model"
)

// PolicyController is a fixed-gain heuristic for the benzene column: push
// reflux and reboil toward the purity target, back both off as the column dP
// approaches its alarm limit, and leave the toluene transfer where it is.
type PolicyController struct {
	cfg *model.PlantConfig

	purityTarget float64
	dpGuard      float64 // start shedding vapor traffic above this dP
}

// NewPolicyController derives its targets from the plant's own alarm
// thresholds so the heuristic and the safety system never disagree about
// where "too far" is.
func NewPolicyController(cfg *model.PlantConfig) (*PolicyController, error) {
	if cfg.Type != model.PlantColumn {
		return nil, fmt.Errorf("policy controller supports %q plants only, got %q",
			model.PlantColumn, cfg.Type)
	}
	purity, ok := cfg.AlarmThreshold(model.TagPurity)
	if !ok {
		return nil, fmt.Errorf("policy controller: no purity alarm configured")
	}
	dpAlarm, ok := cfg.AlarmThreshold(model.TagColumnDP)
	if !ok {
		return nil, fmt.Errorf("policy controller: no column dP alarm configured")
	}
	return &PolicyController{
		cfg:          cfg,
		purityTarget: purity,
		dpGuard:      0.9 * dpAlarm,
	}, nil
}

func (c *PolicyController) Name() string { return "policy" }

// Suggest computes the next setpoints. Gains are deliberately small relative
// to the move caps so the limiter rarely binds on controller turns.
func (c *PolicyController) Suggest(_ context.Context, state model.TagMap) (model.TagMap, error) {
	purityErr := c.purityTarget - state[model.TagPurity]
	dpExcess := math.Max(0, state[model.TagColumnDP]-c.dpGuard)

	reflux, _ := c.cfg.Actuator(model.TagRefluxSP)
	reboil, _ := c.cfg.Actuator(model.TagReboilSP)
	transfer, _ := c.cfg.Actuator(model.TagTransferSP)

	return model.TagMap{
		model.TagRefluxSP: clip(
			state[model.TagRefluxFlow]+5.0*purityErr*100-3.0*dpExcess*10,
			reflux.Min, reflux.Max),
		model.TagReboilSP: clip(
			state[model.TagReboilDuty]+2.0*purityErr*100-1.0*dpExcess*10,
			reboil.Min, reboil.Max),
		model.TagTransferSP: clip(
			state[model.TagTransferFlow],
			transfer.Min, transfer.Max),
	}, nil
}
