package core

import (
	"fmt"
	"strings"

	"github.com/signalsfoundry/plant-ots/model"
)

// SafetyEvaluator applies the plant's three-tier limits to a tentative state.
// Rules are data: the same evaluator serves every plant variant.
//
// Evaluation order is fixed. ESD rules are checked first and short-circuit
// everything else; interlocks fire independently and compose their setpoint
// adjustments; alarms are collected last, in rule order. All comparisons are
// strict, so a value exactly at a limit does not trip it.
type SafetyEvaluator struct {
	limits model.SafetyLimits
	derive func(model.TagMap) model.TagMap
}

// NewSafetyEvaluator builds the evaluator for a plant configuration.
func NewSafetyEvaluator(cfg *model.PlantConfig) *SafetyEvaluator {
	ev := &SafetyEvaluator{limits: cfg.Safety}
	if cfg.Type == model.PlantExchanger {
		ev.derive = deriveExchangerTags
	}
	return ev
}

// deriveExchangerTags adds the temperature approach, which the alarm rules
// reference but the physics state does not carry.
func deriveExchangerTags(state model.TagMap) model.TagMap {
	out := state.Clone()
	out[model.TagApproachT] = state[model.TagHotOutT] - state[model.TagColdInT]
	return out
}

// Evaluate inspects the tentative state against the configured limits. The
// returned AdjustedInputs holds only the setpoints an interlock overrode;
// callers merge it over the applied inputs before re-stepping. A rule whose
// tag is absent from the state is skipped.
func (e *SafetyEvaluator) Evaluate(tentative, inputs model.TagMap) model.SafetyResult {
	res := model.SafetyResult{AdjustedInputs: make(model.TagMap)}

	state := tentative
	if e.derive != nil {
		state = e.derive(tentative)
	}

	for _, r := range e.limits.ESD {
		v, ok := state[r.Tag]
		if !ok {
			continue
		}
		if exceeds(v, r.Limit, r.Above) {
			res.ESDTriggered = true
			res.ESDReason = esdReason(r, v)
			return res
		}
	}

	for _, r := range e.limits.Interlocks {
		v, ok := state[r.Tag]
		if !ok {
			continue
		}
		if !exceeds(v, r.Limit, r.Above) {
			continue
		}
		res.InterlockActive = true
		if res.InterlockReason == "" {
			res.InterlockReason = r.Reason
		} else if !strings.Contains(res.InterlockReason, r.Reason) {
			res.InterlockReason += "; " + r.Reason
		}
		for _, adj := range r.Adjust {
			base, ok := res.AdjustedInputs[adj.Tag]
			if !ok {
				base = inputs[adj.Tag]
			}
			res.AdjustedInputs[adj.Tag] = adj.Apply(base)
		}
	}

	for _, r := range e.limits.Alarms {
		v, ok := state[r.Tag]
		if !ok {
			continue
		}
		if exceeds(v, r.Limit, r.Above) {
			res.Alarms = append(res.Alarms, r.Message)
		}
	}

	return res
}

// exceeds reports whether v strictly violates the limit in the rule's
// direction.
func exceeds(v, limit float64, above bool) bool {
	if above {
		return v > limit
	}
	return v < limit
}

func esdReason(r model.ESDRule, v float64) string {
	op := ">"
	if !r.Above {
		op = "<"
	}
	if r.Unit != "" {
		return fmt.Sprintf("Critical %s: %.*f %s %s %g %s",
			r.Label, r.Decimals, v, r.Unit, op, r.Limit, r.Unit)
	}
	return fmt.Sprintf("Critical %s: %.*f %s %g",
		r.Label, r.Decimals, v, op, r.Limit)
}
