package core

import (
	"errors"
	"testing"

	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/model"
)

func newExchangerForTest(t *testing.T) *ExchangerModel {
	t.Helper()
	m, err := NewExchangerModel(model.DefaultExchangerConfig(), logging.Noop())
	if err != nil {
		t.Fatalf("NewExchangerModel: %v", err)
	}
	return m
}

func nominalExchangerState() model.TagMap {
	return model.DefaultExchangerConfig().Nominal.Clone()
}

func exchangerInputs() model.TagMap {
	return model.TagMap{
		model.TagHotFlowSP:  30.0,
		model.TagColdFlowSP: 50.0,
	}
}

func TestExchangerSteadyStateTransfersHeat(t *testing.T) {
	m := newExchangerForTest(t)

	next, err := m.Step(nominalExchangerState(), exchangerInputs(), nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}

	if next[model.TagHeatDuty] <= 0 {
		t.Fatalf("design conditions should transfer heat, duty = %v", next[model.TagHeatDuty])
	}
	if !(next[model.TagHotOutT] < next[model.TagHotInT]) {
		t.Fatalf("hot side must cool: in=%v out=%v",
			next[model.TagHotInT], next[model.TagHotOutT])
	}
	if !(next[model.TagColdOutT] > next[model.TagColdInT]) {
		t.Fatalf("cold side must warm: in=%v out=%v",
			next[model.TagColdInT], next[model.TagColdOutT])
	}
}

func TestExchangerTemperatureCrossZeroesDuty(t *testing.T) {
	m := newExchangerForTest(t)

	// Cold feed hotter than the hot feed: no driving force.
	next, err := m.Step(nominalExchangerState(), exchangerInputs(), model.TagMap{
		model.TagHotFeedT:  40.0,
		model.TagColdFeedT: 70.0,
	})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if next[model.TagHeatDuty] != 0 {
		t.Fatalf("temperature cross should zero the duty, got %v", next[model.TagHeatDuty])
	}
}

func TestExchangerPumpTripStarvesFlow(t *testing.T) {
	m := newExchangerForTest(t)
	state := nominalExchangerState()

	trip := model.TagMap{model.TagHotPumpTrip: 1.0}

	next, err := m.Step(state, exchangerInputs(), trip)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !(next[model.TagHotFlow] < state[model.TagHotFlow]) {
		t.Fatalf("tripped pump should bleed flow, got %v", next[model.TagHotFlow])
	}

	// A few more turns and the flow is essentially gone.
	for i := 0; i < 10; i++ {
		next, err = m.Step(next, exchangerInputs(), trip)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if next[model.TagHotFlow] > 1.0 {
		t.Fatalf("flow should decay toward zero under a trip, got %v", next[model.TagHotFlow])
	}
}

func TestExchangerFoulingAccumulates(t *testing.T) {
	m := newExchangerForTest(t)

	scenario := model.TagMap{
		model.TagFoulHotRate:  2.0, // percent per turn
		model.TagFoulColdRate: 1.5,
	}

	state := nominalExchangerState()
	next, err := m.Step(state, exchangerInputs(), scenario)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := next[model.TagFoulHot]; !approx(got, 0.02) {
		t.Fatalf("hot fouling after one turn = %v, want 0.02", got)
	}
	if got := next[model.TagFoulCold]; !approx(got, 0.015) {
		t.Fatalf("cold fouling after one turn = %v, want 0.015", got)
	}

	// Fouled duty must be below the clean duty at the same conditions.
	clean, err := m.Step(state, exchangerInputs(), nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	fouled := next
	for i := 0; i < 20; i++ {
		fouled, err = m.Step(fouled, exchangerInputs(), scenario)
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if fouled[model.TagHeatDuty] >= clean[model.TagHeatDuty] {
		t.Fatalf("fouling should cut duty: clean=%v fouled=%v",
			clean[model.TagHeatDuty], fouled[model.TagHeatDuty])
	}
	if fouled[model.TagHotDP] <= clean[model.TagHotDP] {
		t.Fatalf("fouling should raise hot dP: clean=%v fouled=%v",
			clean[model.TagHotDP], fouled[model.TagHotDP])
	}
}

func TestExchangerLeakContaminatesColdInlet(t *testing.T) {
	m := newExchangerForTest(t)

	next, err := m.Step(nominalExchangerState(), exchangerInputs(), model.TagMap{
		model.TagLeakSeverity: 0.5,
	})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := next[model.TagTubeLeak]; !approx(got, 0.5) {
		t.Fatalf("tube leak = %v, want 0.5", got)
	}
	// Cold inlet pulled toward the hot inlet by the leak mix.
	if !(next[model.TagColdInT] > 25.0) {
		t.Fatalf("leak should warm the cold inlet, got %v", next[model.TagColdInT])
	}
}

func TestExchangerStepMissingInput(t *testing.T) {
	m := newExchangerForTest(t)

	_, err := m.Step(nominalExchangerState(), model.TagMap{model.TagHotFlowSP: 30.0}, nil)
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("err = %v, want ErrMissingInput", err)
	}
}

func TestExchangerRejectsWrongPlantType(t *testing.T) {
	_, err := NewExchangerModel(model.DefaultColumnConfig(), logging.Noop())
	if !errors.Is(err, ErrBadConfig) {
		t.Fatalf("err = %v, want ErrBadConfig", err)
	}
}
