package core

import (
	"math"
	"reflect"
	"testing"

	"github.com/signalsfoundry/plant-ots/model"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// safeColumnState returns a tentative state with every tag comfortably inside
// its limits; tests override the tag under scrutiny.
func safeColumnState() model.TagMap {
	return model.TagMap{
		model.TagPurity:       0.9995,
		model.TagColumnDP:     0.10,
		model.TagOverheadT:    84.5,
		model.TagDrumLevel:    0.65,
		model.TagBottomsLevel: 0.56,
		model.TagRefluxFlow:   25.0,
		model.TagReboilDuty:   1.2,
		model.TagTransferFlow: 55.0,
	}
}

func columnInputs() model.TagMap {
	return model.TagMap{
		model.TagRefluxSP:   25.0,
		model.TagReboilSP:   1.5,
		model.TagTransferSP: 55.0,
	}
}

func TestEvaluateCleanState(t *testing.T) {
	ev := NewSafetyEvaluator(model.DefaultColumnConfig())

	res := ev.Evaluate(safeColumnState(), columnInputs())
	if !res.Clear() {
		t.Fatalf("clean state should evaluate clear, got %+v", res)
	}
}

func TestEvaluateAlarmOnly(t *testing.T) {
	ev := NewSafetyEvaluator(model.DefaultColumnConfig())

	state := safeColumnState()
	state[model.TagColumnDP] = 0.31

	res := ev.Evaluate(state, columnInputs())
	want := []string{"High column ΔP"}
	if !reflect.DeepEqual(res.Alarms, want) {
		t.Fatalf("alarms = %v, want %v", res.Alarms, want)
	}
	if res.InterlockActive || res.ESDTriggered {
		t.Fatalf("alarm-tier excursion should not escalate, got %+v", res)
	}
}

func TestEvaluateInterlockAdjustsSetpoints(t *testing.T) {
	ev := NewSafetyEvaluator(model.DefaultColumnConfig())

	state := safeColumnState()
	state[model.TagColumnDP] = 0.335

	res := ev.Evaluate(state, columnInputs())
	if res.ESDTriggered {
		t.Fatalf("interlock-tier excursion must not trip ESD: %+v", res)
	}
	if !res.InterlockActive {
		t.Fatalf("expected interlock at dP=0.335")
	}
	if res.InterlockReason != "Flooding interlock: high column dP" {
		t.Fatalf("interlock reason = %q", res.InterlockReason)
	}

	if got := res.AdjustedInputs[model.TagReboilSP]; !approx(got, 1.3) {
		t.Fatalf("adjusted reboil = %v, want 1.3", got)
	}
	if got := res.AdjustedInputs[model.TagRefluxSP]; !approx(got, 27.0) {
		t.Fatalf("adjusted reflux = %v, want 27.0", got)
	}
	if _, ok := res.AdjustedInputs[model.TagTransferSP]; ok {
		t.Fatalf("transfer setpoint should be untouched, got %v", res.AdjustedInputs)
	}

	// The alarm tier still reports: the interlock threshold implies the
	// alarm threshold was crossed.
	if len(res.Alarms) == 0 {
		t.Fatalf("interlocked turn should still carry the dP alarm")
	}
}

func TestEvaluateInterlockAdjustmentFloor(t *testing.T) {
	ev := NewSafetyEvaluator(model.DefaultColumnConfig())

	state := safeColumnState()
	state[model.TagColumnDP] = 0.335
	inputs := columnInputs()
	inputs[model.TagReboilSP] = 0.35 // delta -0.2 would land below the floor

	res := ev.Evaluate(state, inputs)
	if got := res.AdjustedInputs[model.TagReboilSP]; got != 0.3 {
		t.Fatalf("adjusted reboil = %v, want floor 0.3", got)
	}
}

func TestEvaluateESDComparisonIsStrict(t *testing.T) {
	ev := NewSafetyEvaluator(model.DefaultColumnConfig())

	state := safeColumnState()
	state[model.TagColumnDP] = 0.34 // exactly at the limit

	res := ev.Evaluate(state, columnInputs())
	if res.ESDTriggered {
		t.Fatalf("value exactly at the ESD limit must not trip")
	}
	if !res.InterlockActive {
		t.Fatalf("dP=0.34 is past the interlock threshold, expected interlock")
	}

	state[model.TagColumnDP] = 0.3401
	res = ev.Evaluate(state, columnInputs())
	if !res.ESDTriggered {
		t.Fatalf("dP=0.3401 must trip ESD")
	}
}

func TestEvaluateESDShortCircuits(t *testing.T) {
	ev := NewSafetyEvaluator(model.DefaultColumnConfig())

	// Everything is wrong at once; only the ESD should report.
	state := safeColumnState()
	state[model.TagColumnDP] = 0.40
	state[model.TagOverheadT] = 105.0
	state[model.TagDrumLevel] = 0.02
	state[model.TagPurity] = 0.95

	res := ev.Evaluate(state, columnInputs())
	if !res.ESDTriggered {
		t.Fatalf("expected ESD")
	}
	if res.InterlockActive || len(res.Alarms) != 0 || len(res.AdjustedInputs) != 0 {
		t.Fatalf("ESD must suppress lower tiers, got %+v", res)
	}
}

func TestEvaluateESDReasonFormat(t *testing.T) {
	ev := NewSafetyEvaluator(model.DefaultColumnConfig())

	state := safeColumnState()
	state[model.TagColumnDP] = 0.341

	res := ev.Evaluate(state, columnInputs())
	want := "Critical column dP: 0.341 bar > 0.34 bar"
	if res.ESDReason != want {
		t.Fatalf("esd reason = %q, want %q", res.ESDReason, want)
	}
}

func TestEvaluateLowDrumLevelESD(t *testing.T) {
	ev := NewSafetyEvaluator(model.DefaultColumnConfig())

	state := safeColumnState()
	state[model.TagDrumLevel] = 0.049

	res := ev.Evaluate(state, columnInputs())
	if !res.ESDTriggered {
		t.Fatalf("drum level below 0.05 must trip ESD")
	}

	state[model.TagDrumLevel] = 0.05
	res = ev.Evaluate(state, columnInputs())
	if res.ESDTriggered {
		t.Fatalf("drum level exactly 0.05 must not trip")
	}
	if len(res.Alarms) != 1 || res.Alarms[0] != "Low drum level" {
		t.Fatalf("alarms = %v, want low drum level alarm", res.Alarms)
	}
}

func TestEvaluateAlarmOrderIsRuleOrder(t *testing.T) {
	ev := NewSafetyEvaluator(model.DefaultColumnConfig())

	state := safeColumnState()
	state[model.TagColumnDP] = 0.31
	state[model.TagOverheadT] = 101.0
	state[model.TagPurity] = 0.95

	res := ev.Evaluate(state, columnInputs())
	want := []string{"High column ΔP", "High overhead temperature", "Off-spec benzene purity"}
	if !reflect.DeepEqual(res.Alarms, want) {
		t.Fatalf("alarms = %v, want %v", res.Alarms, want)
	}
}

func TestEvaluateSkipsAbsentTags(t *testing.T) {
	ev := NewSafetyEvaluator(model.DefaultColumnConfig())

	state := safeColumnState()
	delete(state, model.TagDrumLevel) // would read as 0 and falsely trip

	res := ev.Evaluate(state, columnInputs())
	if res.ESDTriggered {
		t.Fatalf("absent tag must not trip its rules, got %+v", res)
	}
}
