package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/model"
)

// exchangerState is the typed view of the shell-and-tube exchanger snapshot.
type exchangerState struct {
	HotInT   float64
	HotOutT  float64
	ColdInT  float64
	ColdOutT float64
	HotFlow  float64 // kg/s
	ColdFlow float64 // kg/s
	HotDP    float64 // bar
	ColdDP   float64 // bar
	Duty     float64 // kW
	FoulHot  float64 // 0-1
	FoulCold float64 // 0-1
	TubeLeak float64 // 0-1
}

func exchangerStateFromMap(m model.TagMap) exchangerState {
	return exchangerState{
		HotInT:   m[model.TagHotInT],
		HotOutT:  m[model.TagHotOutT],
		ColdInT:  m[model.TagColdInT],
		ColdOutT: m[model.TagColdOutT],
		HotFlow:  m[model.TagHotFlow],
		ColdFlow: m[model.TagColdFlow],
		HotDP:    m[model.TagHotDP],
		ColdDP:   m[model.TagColdDP],
		Duty:     m[model.TagHeatDuty],
		FoulHot:  m[model.TagFoulHot],
		FoulCold: m[model.TagFoulCold],
		TubeLeak: m[model.TagTubeLeak],
	}
}

func (s exchangerState) toMap() model.TagMap {
	return model.TagMap{
		model.TagHotInT:   s.HotInT,
		model.TagHotOutT:  s.HotOutT,
		model.TagColdInT:  s.ColdInT,
		model.TagColdOutT: s.ColdOutT,
		model.TagHotFlow:  s.HotFlow,
		model.TagColdFlow: s.ColdFlow,
		model.TagHotDP:    s.HotDP,
		model.TagColdDP:   s.ColdDP,
		model.TagHeatDuty: s.Duty,
		model.TagFoulHot:  s.FoulHot,
		model.TagFoulCold: s.FoulCold,
		model.TagTubeLeak: s.TubeLeak,
	}
}

// ExchangerModel is a counter-flow shell-and-tube heat exchanger with fouling
// on both sides, tube leakage, and pump-trip disturbances. Outlet
// temperatures relax toward an effectiveness-NTU energy balance.
type ExchangerModel struct {
	cfg  *model.PlantConfig
	spec model.ExchangerSpec
	log  logging.Logger
}

// NewExchangerModel builds the exchanger physics from configuration.
func NewExchangerModel(cfg *model.PlantConfig, log logging.Logger) (*ExchangerModel, error) {
	if log == nil {
		log = logging.Noop()
	}
	if cfg.Type != model.PlantExchanger {
		return nil, fmt.Errorf("%w: exchanger model given %q config", ErrBadConfig, cfg.Type)
	}
	spec := model.DefaultExchangerSpec()
	if cfg.Exchanger != nil {
		spec = *cfg.Exchanger
	}
	return &ExchangerModel{cfg: cfg, spec: spec, log: log}, nil
}

// Step computes the tentative next state without touching the current one.
func (m *ExchangerModel) Step(state, inputs, scenario model.TagMap) (model.TagMap, error) {
	if err := requireInputs(m.cfg, inputs); err != nil {
		return nil, err
	}

	x := exchangerStateFromMap(state)
	sc := m.cfg.ScenarioDefaults.Merge(scenario)
	spec := m.spec

	hotFeedT := sc[model.TagHotFeedT]
	coldFeedT := sc[model.TagColdFeedT]
	foulHotRate := sc[model.TagFoulHotRate] / 100.0 // percent per turn
	foulColdRate := sc[model.TagFoulColdRate] / 100.0
	leakSeverity := sc[model.TagLeakSeverity]

	var next exchangerState

	// Flow dynamics: pump trips force the setpoint to zero before the lag.
	hotSP := inputs[model.TagHotFlowSP]
	coldSP := inputs[model.TagColdFlowSP]
	if sc[model.TagHotPumpTrip] != 0 {
		hotSP = 0
	}
	if sc[model.TagColdPumpTrip] != 0 {
		coldSP = 0
	}
	next.HotFlow = m.trackFlow(model.TagHotFlowSP, x.HotFlow, hotSP)
	next.ColdFlow = m.trackFlow(model.TagColdFlowSP, x.ColdFlow, coldSP)

	// Fouling drifts slowly; a tube leak follows the scenario directly.
	next.FoulHot = m.clamp(model.TagFoulHot, x.FoulHot+foulHotRate)
	next.FoulCold = m.clamp(model.TagFoulCold, x.FoulCold+foulColdRate)
	next.TubeLeak = m.clamp(model.TagTubeLeak, leakSeverity)

	// Fouling degrades the clean UA, never below the configured floor.
	uaFactor := 1.0 - spec.FoulHotUAGain*next.FoulHot - spec.FoulColdUAGain*next.FoulCold
	if uaFactor < spec.MinUAFactor {
		uaFactor = spec.MinUAFactor
	}
	ua := spec.DesignUA * uaFactor

	// Inlet temperatures respond immediately to the feed.
	next.HotInT = m.clamp(model.TagHotInT, hotFeedT)
	next.ColdInT = m.clamp(model.TagColdInT, coldFeedT)

	// A tube leak mixes hot fluid into the cold inlet.
	if next.TubeLeak > 0.01 {
		leakFrac := next.TubeLeak * spec.LeakMixFraction
		contaminated := coldFeedT*(1-leakFrac) + x.HotInT*leakFrac
		next.ColdInT = m.clamp(model.TagColdInT, contaminated)
	}

	hotOutTarget, coldOutTarget, duty := m.energyBalance(next, ua)

	alphaHot := 1.0 - math.Exp(-1.0/spec.HotTau)
	alphaCold := 1.0 - math.Exp(-1.0/spec.ColdTau)
	next.HotOutT = m.clamp(model.TagHotOutT, x.HotOutT+alphaHot*(hotOutTarget-x.HotOutT))
	next.ColdOutT = m.clamp(model.TagColdOutT, x.ColdOutT+alphaCold*(coldOutTarget-x.ColdOutT))
	next.Duty = m.clamp(model.TagHeatDuty, duty)

	// Pressure drop grows with flow (slightly non-linear) and fouling.
	hotFlowFactor := math.Pow(next.HotFlow/spec.NominalHotFlow, spec.FlowExponent)
	next.HotDP = m.clamp(model.TagHotDP,
		spec.BaseHotDP*hotFlowFactor*(1.0+spec.FoulHotDPGain*next.FoulHot))

	coldFlowFactor := math.Pow(next.ColdFlow/spec.NominalColdFlow, spec.FlowExponent)
	next.ColdDP = m.clamp(model.TagColdDP,
		spec.BaseColdDP*coldFlowFactor*(1.0+spec.FoulColdDPGain*next.FoulCold))

	return next.toMap(), nil
}

// energyBalance returns the target outlet temperatures and the actual duty
// from the counter-flow effectiveness-NTU method. With no meaningful flow the
// outlets drift and duty is zero; a degenerate temperature cross also yields
// zero duty rather than an undefined value.
func (m *ExchangerModel) energyBalance(s exchangerState, ua float64) (hotOut, coldOut, duty float64) {
	spec := m.spec

	if s.HotFlow <= 1.0 || s.ColdFlow <= 1.0 {
		return 0.5 * (s.HotOutT + s.ColdInT), s.ColdInT, 0.0
	}
	if s.HotInT <= s.ColdInT {
		// Temperature cross: no driving force.
		return 0.5 * (s.HotOutT + s.ColdInT), s.ColdInT, 0.0
	}

	cHot := s.HotFlow * spec.CpHot
	cCold := s.ColdFlow * spec.CpCold
	cMin := math.Min(cHot, cCold)
	cMax := math.Max(cHot, cCold)

	ntu := ua / cMin
	cRatio := cMin / cMax

	var effectiveness float64
	if math.Abs(cRatio-1.0) < 0.01 {
		effectiveness = ntu / (1.0 + ntu)
	} else {
		e := math.Exp(-ntu * (1.0 - cRatio))
		effectiveness = (1.0 - e) / (1.0 - cRatio*e)
	}
	if effectiveness > spec.MaxEffectiveness {
		effectiveness = spec.MaxEffectiveness
	}

	qMax := cMin * (s.HotInT - s.ColdInT)
	duty = effectiveness * qMax

	hotOut = s.HotInT - duty/(cHot+1e-6)
	coldOut = s.ColdInT + duty/(cCold+1e-6)
	return hotOut, coldOut, duty
}

// trackFlow applies the first-order flow lag for one setpoint tag.
func (m *ExchangerModel) trackFlow(sp model.Tag, current, target float64) float64 {
	act, _ := m.cfg.Actuator(sp)
	alpha := 1.0 - math.Exp(-1.0/act.Lag)
	return m.clamp(act.PV, current+alpha*(target-current))
}

func (m *ExchangerModel) clamp(tag model.Tag, v float64) float64 {
	return clampTo(m.cfg.Bounds, tag, v)
}
