package core

import (
	"context"
	"time"

	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/model"
)

// Turn outcomes, from best to worst.
const (
	OutcomeOK        = "ok"
	OutcomeAlarm     = "alarm"
	OutcomeInterlock = "interlock"
	OutcomeESD       = "esd"
)

// TurnResult is everything one turn produced: the newly committed state, the
// safety evaluation, the setpoints that were actually applied (after move caps
// and any interlock overrides), and a single outcome label.
type TurnResult struct {
	State   model.TagMap       `json:"state"`
	Safety  model.SafetyResult `json:"safety"`
	Applied model.TagMap       `json:"applied"`
	Outcome string             `json:"outcome"`
}

// TurnRecorder receives per-turn observations. The observability collector
// satisfies this; tests use a stub.
type TurnRecorder interface {
	ObserveTurn(plant, outcome string, seconds float64)
	AddAlarms(plant string, n int)
	SetProcessValue(plant, tag string, v float64)
}

// TurnOrchestrator drives the fixed turn pipeline: cap moves, step the
// physics, evaluate safety, then commit, re-step under interlock overrides,
// or drop to the ESD safe state.
type TurnOrchestrator struct {
	plant    *Plant
	limiter  *MoveLimiter
	safety   *SafetyEvaluator
	log      logging.Logger
	recorder TurnRecorder
}

// NewTurnOrchestrator wires the pipeline for one plant. recorder may be nil.
func NewTurnOrchestrator(plant *Plant, log logging.Logger, recorder TurnRecorder) *TurnOrchestrator {
	if log == nil {
		log = logging.Noop()
	}
	return &TurnOrchestrator{
		plant:    plant,
		limiter:  NewMoveLimiter(plant.Config()),
		safety:   NewSafetyEvaluator(plant.Config()),
		log:      log,
		recorder: recorder,
	}
}

// ExecuteTurn advances the plant by one turn. On a physics error the
// committed state is untouched and no result is produced. The safety result
// always reflects the first evaluation of the turn: an interlock re-step does
// not re-run the rules, it only changes what gets committed.
func (o *TurnOrchestrator) ExecuteTurn(ctx context.Context, requested, scenario model.TagMap) (TurnResult, error) {
	start := time.Now()
	plantName := string(o.plant.Config().Type)

	capped := o.limiter.CapMoves(requested, o.plant.State())

	tentative, err := o.plant.Step(capped, scenario)
	if err != nil {
		o.log.Error(ctx, "physics step failed",
			logging.String("plant", plantName),
			logging.String("error", err.Error()))
		return TurnResult{}, err
	}

	safety := o.safety.Evaluate(tentative, capped)

	res := TurnResult{Safety: safety, Applied: capped}
	switch {
	case safety.ESDTriggered:
		res.State = o.plant.ESDSafeState()
		res.Outcome = OutcomeESD
		o.log.Warn(ctx, "emergency shutdown",
			logging.String("plant", plantName),
			logging.String("reason", safety.ESDReason))

	case safety.InterlockActive:
		applied := capped.Merge(safety.AdjustedInputs)
		adjusted, err := o.plant.Step(applied, scenario)
		if err != nil {
			o.log.Error(ctx, "interlock re-step failed",
				logging.String("plant", plantName),
				logging.String("error", err.Error()))
			return TurnResult{}, err
		}
		o.plant.Commit(adjusted)
		res.State = o.plant.State()
		res.Applied = applied
		res.Outcome = OutcomeInterlock
		o.log.Info(ctx, "interlock override applied",
			logging.String("plant", plantName),
			logging.String("reason", safety.InterlockReason))

	default:
		o.plant.Commit(tentative)
		res.State = o.plant.State()
		res.Outcome = OutcomeOK
		if len(safety.Alarms) > 0 {
			res.Outcome = OutcomeAlarm
		}
	}

	if o.recorder != nil {
		o.recorder.ObserveTurn(plantName, res.Outcome, time.Since(start).Seconds())
		if n := len(safety.Alarms); n > 0 {
			o.recorder.AddAlarms(plantName, n)
		}
		for tag, v := range res.State {
			o.recorder.SetProcessValue(plantName, string(tag), v)
		}
	}
	return res, nil
}
