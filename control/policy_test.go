package control

import (
	"context"
	"testing"

	"github.com/signalsfoundry/plant-ots/model"
)

func columnState(purity, dp float64) model.TagMap {
	return model.TagMap{
		model.TagPurity:       purity,
		model.TagColumnDP:     dp,
		model.TagOverheadT:    84.5,
		model.TagDrumLevel:    0.65,
		model.TagBottomsLevel: 0.56,
		model.TagRefluxFlow:   25.0,
		model.TagReboilDuty:   1.2,
		model.TagTransferFlow: 55.0,
	}
}

func TestPolicyPushesTowardPurityTarget(t *testing.T) {
	c, err := NewPolicyController(model.DefaultColumnConfig())
	if err != nil {
		t.Fatalf("NewPolicyController: %v", err)
	}

	// Off-spec purity with healthy dP: both handles move up.
	sp, err := c.Suggest(context.Background(), columnState(0.9900, 0.10))
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if sp[model.TagRefluxSP] <= 25.0 {
		t.Fatalf("reflux suggestion %v should exceed current flow", sp[model.TagRefluxSP])
	}
	if sp[model.TagReboilSP] <= 1.2 {
		t.Fatalf("reboil suggestion %v should exceed current duty", sp[model.TagReboilSP])
	}
	if got := sp[model.TagTransferSP]; got != 55.0 {
		t.Fatalf("transfer suggestion %v should hold current flow", got)
	}
}

func TestPolicyBacksOffNearFlooding(t *testing.T) {
	c, err := NewPolicyController(model.DefaultColumnConfig())
	if err != nil {
		t.Fatalf("NewPolicyController: %v", err)
	}

	// On-spec purity with dP well past the guard band: shed vapor traffic.
	sp, err := c.Suggest(context.Background(), columnState(0.9995, 0.32))
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if sp[model.TagRefluxSP] >= 25.0 {
		t.Fatalf("reflux suggestion %v should back off under high dP", sp[model.TagRefluxSP])
	}
	if sp[model.TagReboilSP] >= 1.2 {
		t.Fatalf("reboil suggestion %v should back off under high dP", sp[model.TagReboilSP])
	}
}

func TestPolicySuggestionsRespectRanges(t *testing.T) {
	c, err := NewPolicyController(model.DefaultColumnConfig())
	if err != nil {
		t.Fatalf("NewPolicyController: %v", err)
	}

	sp, err := c.Suggest(context.Background(), columnState(0.80, 0.0))
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if sp[model.TagRefluxSP] > 45.0 || sp[model.TagRefluxSP] < 10.0 {
		t.Fatalf("reflux suggestion %v outside actuator range", sp[model.TagRefluxSP])
	}
	if sp[model.TagReboilSP] > 3.5 || sp[model.TagReboilSP] < 0.3 {
		t.Fatalf("reboil suggestion %v outside actuator range", sp[model.TagReboilSP])
	}
}

func TestPolicyRejectsExchangerConfig(t *testing.T) {
	if _, err := NewPolicyController(model.DefaultExchangerConfig()); err == nil {
		t.Fatalf("policy controller should reject a non-column config")
	}
}
