package core

import (
	"context"
	"errors"
	"testing"

	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/model"
)

type recordingRecorder struct {
	turns  []string
	alarms int
	values map[string]float64
}

func (r *recordingRecorder) ObserveTurn(plant, outcome string, seconds float64) {
	r.turns = append(r.turns, outcome)
}

func (r *recordingRecorder) AddAlarms(plant string, n int) { r.alarms += n }

func (r *recordingRecorder) SetProcessValue(plant, tag string, v float64) {
	if r.values == nil {
		r.values = make(map[string]float64)
	}
	r.values[tag] = v
}

func TestExecuteTurnCommitsCleanTurn(t *testing.T) {
	p := newColumnPlant(t)
	// The nominal purity sits below the product spec, which is itself an
	// alarm; start from an on-spec state for a genuinely clean turn.
	state := p.State()
	state[model.TagPurity] = 0.9996
	p.Commit(state)

	rec := &recordingRecorder{}
	o := NewTurnOrchestrator(p, logging.Noop(), rec)

	requested := model.TagMap{
		model.TagRefluxSP:   25.0,
		model.TagReboilSP:   1.35,
		model.TagTransferSP: 55.0,
	}
	res, err := o.ExecuteTurn(context.Background(), requested, nil)
	if err != nil {
		t.Fatalf("ExecuteTurn: %v", err)
	}
	if res.Outcome != OutcomeOK {
		t.Fatalf("outcome = %q, want %q (safety: %+v)", res.Outcome, OutcomeOK, res.Safety)
	}
	if !tagMapsEqual(res.State, p.State()) {
		t.Fatalf("result state must equal the committed state")
	}
	if len(rec.turns) != 1 || rec.turns[0] != OutcomeOK {
		t.Fatalf("recorder saw %v, want one ok turn", rec.turns)
	}
	// The committed state is exported tag by tag for the process gauges.
	if got, ok := rec.values[string(model.TagPurity)]; !ok || !approx(got, res.State[model.TagPurity]) {
		t.Fatalf("recorded purity = %v (ok=%v), want committed %v", got, ok, res.State[model.TagPurity])
	}
	if len(rec.values) != len(res.State) {
		t.Fatalf("recorded %d process values, want %d", len(rec.values), len(res.State))
	}
}

func TestExecuteTurnAppliesMoveCaps(t *testing.T) {
	p := newColumnPlant(t)
	o := NewTurnOrchestrator(p, logging.Noop(), nil)

	requested := model.TagMap{
		model.TagRefluxSP:   45.0, // 20 above the pv, cap is 2
		model.TagReboilSP:   1.2,
		model.TagTransferSP: 55.0,
	}
	res, err := o.ExecuteTurn(context.Background(), requested, nil)
	if err != nil {
		t.Fatalf("ExecuteTurn: %v", err)
	}
	if got := res.Applied[model.TagRefluxSP]; !approx(got, 27.0) {
		t.Fatalf("applied reflux = %v, want capped 27.0", got)
	}
}

func TestExecuteTurnInterlockReStepsWithOverrides(t *testing.T) {
	p := newColumnPlant(t)
	// The dP relaxes toward its much lower equilibrium each turn, so the
	// committed value has to start well above the interlock threshold for
	// the tentative state to land inside the interlock band.
	state := p.State()
	state[model.TagColumnDP] = 0.44
	p.Commit(state)

	o := NewTurnOrchestrator(p, logging.Noop(), nil)

	requested := model.TagMap{
		model.TagRefluxSP:   25.0,
		model.TagReboilSP:   1.35,
		model.TagTransferSP: 55.0,
	}
	res, err := o.ExecuteTurn(context.Background(), requested, nil)
	if err != nil {
		t.Fatalf("ExecuteTurn: %v", err)
	}
	if res.Outcome != OutcomeInterlock {
		t.Fatalf("outcome = %q, want %q (safety: %+v)", res.Outcome, OutcomeInterlock, res.Safety)
	}
	if !res.Safety.InterlockActive {
		t.Fatalf("safety result should carry the interlock")
	}
	// The applied map reflects the overrides, not the original request.
	if got := res.Applied[model.TagReboilSP]; !approx(got, 1.15) {
		t.Fatalf("applied reboil = %v, want adjusted 1.15", got)
	}
	if got := res.Applied[model.TagRefluxSP]; !approx(got, 27.0) {
		t.Fatalf("applied reflux = %v, want adjusted 27.0", got)
	}
	if p.Tripped() {
		t.Fatalf("interlock must not trip the plant")
	}
}

func TestExecuteTurnESDDropsToSafeState(t *testing.T) {
	p := newColumnPlant(t)
	// The drum drains at nominal feed, so a level just above the ESD limit
	// drops through it on the next step.
	state := p.State()
	state[model.TagDrumLevel] = 0.06
	p.Commit(state)

	o := NewTurnOrchestrator(p, logging.Noop(), nil)

	res, err := o.ExecuteTurn(context.Background(), columnInputs(), nil)
	if err != nil {
		t.Fatalf("ExecuteTurn: %v", err)
	}
	if res.Outcome != OutcomeESD {
		t.Fatalf("outcome = %q, want %q (safety: %+v)", res.Outcome, OutcomeESD, res.Safety)
	}
	if res.Safety.ESDReason == "" {
		t.Fatalf("ESD must carry a reason")
	}
	if got := res.State[model.TagRefluxFlow]; !approx(got, 20.0) {
		t.Fatalf("post-ESD reflux = %v, want safe 20.0", got)
	}
	if !p.Tripped() {
		t.Fatalf("ESD must latch")
	}
}

func TestExecuteTurnPhysicsErrorLeavesStateUntouched(t *testing.T) {
	p := newColumnPlant(t)
	o := NewTurnOrchestrator(p, logging.Noop(), nil)

	// The limiter emits every configured setpoint, so force the error
	// through a tripped plant instead.
	p.ESDSafeState()
	after := p.State()

	_, err := o.ExecuteTurn(context.Background(), columnInputs(), nil)
	if !errors.Is(err, ErrPlantTripped) {
		t.Fatalf("err = %v, want ErrPlantTripped", err)
	}
	if !tagMapsEqual(p.State(), after) {
		t.Fatalf("failed turn must not move the committed state")
	}
}

func TestExecuteTurnAlarmOutcome(t *testing.T) {
	p := newColumnPlant(t)
	state := p.State()
	state[model.TagDrumLevel] = 0.09 // below the 0.10 alarm, above the 0.05 ESD
	p.Commit(state)

	o := NewTurnOrchestrator(p, logging.Noop(), nil)

	// Hold everything: the drum level stays low for at least one turn.
	requested := model.TagMap{
		model.TagRefluxSP:   25.0,
		model.TagReboilSP:   1.2,
		model.TagTransferSP: 55.0,
	}
	res, err := o.ExecuteTurn(context.Background(), requested, nil)
	if err != nil {
		t.Fatalf("ExecuteTurn: %v", err)
	}
	if res.Outcome != OutcomeAlarm {
		t.Fatalf("outcome = %q, want %q (state %v)", res.Outcome, OutcomeAlarm, res.State)
	}
}
