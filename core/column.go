package core

import (
	"context"
	"fmt"
	"math"

	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/model"
)

// columnState is the typed view of the benzene column snapshot. Conversion to
// and from the flat tag map happens only at the package boundary.
type columnState struct {
	Purity    float64 // benzene side-draw purity (mol fraction)
	ColumnDP  float64 // differential pressure (bar)
	OverheadT float64 // overhead temperature (deg C)
	DrumLvl   float64 // reflux drum level (0-1)
	BottomLvl float64 // bottoms level (0-1)
	Reflux    float64 // reflux flow (t/h)
	Reboil    float64 // reboiler duty (MW)
	Transfer  float64 // toluene transfer (t/h)
}

func columnStateFromMap(m model.TagMap) columnState {
	return columnState{
		Purity:    m[model.TagPurity],
		ColumnDP:  m[model.TagColumnDP],
		OverheadT: m[model.TagOverheadT],
		DrumLvl:   m[model.TagDrumLevel],
		BottomLvl: m[model.TagBottomsLevel],
		Reflux:    m[model.TagRefluxFlow],
		Reboil:    m[model.TagReboilDuty],
		Transfer:  m[model.TagTransferFlow],
	}
}

func (s columnState) toMap() model.TagMap {
	return model.TagMap{
		model.TagPurity:       s.Purity,
		model.TagColumnDP:     s.ColumnDP,
		model.TagOverheadT:    s.OverheadT,
		model.TagDrumLevel:    s.DrumLvl,
		model.TagBottomsLevel: s.BottomLvl,
		model.TagRefluxFlow:   s.Reflux,
		model.TagReboilDuty:   s.Reboil,
		model.TagTransferFlow: s.Transfer,
	}
}

// ColumnModel is the first-order benzene/toluene distillation column:
// actuators track their setpoints through a per-tag lag, and the derived
// variables follow linear correlations around the design point.
type ColumnModel struct {
	cfg *model.PlantConfig
	co  model.ColumnCoefficients
	vle VLESolver
	log logging.Logger
}

// NewColumnModel builds the column physics from configuration. A nil solver
// selects the pure correlation path for the overhead temperature; the choice
// is logged once here.
func NewColumnModel(cfg *model.PlantConfig, vle VLESolver, log logging.Logger) (*ColumnModel, error) {
	if log == nil {
		log = logging.Noop()
	}
	if cfg.Type != model.PlantColumn {
		return nil, fmt.Errorf("%w: column model given %q config", ErrBadConfig, cfg.Type)
	}
	co := model.DefaultColumnCoefficients()
	if cfg.Column != nil {
		co = *cfg.Column
	}

	path := "correlation"
	if vle != nil {
		path = "vle"
	}
	log.Info(context.Background(), "column overhead temperature path selected",
		logging.String("path", path))

	return &ColumnModel{cfg: cfg, co: co, vle: vle, log: log}, nil
}

// Step computes the tentative next state. The current state is never
// modified; every output is clamped to its configured bound.
func (m *ColumnModel) Step(state, inputs, scenario model.TagMap) (model.TagMap, error) {
	if err := requireInputs(m.cfg, inputs); err != nil {
		return nil, err
	}

	x := columnStateFromMap(state)
	sc := m.cfg.ScenarioDefaults.Merge(scenario)
	co := m.co

	feed := sc[model.TagFeedRate]
	foulCond := sc[model.TagFoulingCond]
	foulReb := sc[model.TagFoulingReb]

	var next columnState

	// Actuator tracking: first-order lag toward the applied setpoints.
	next.Reflux = m.track(model.TagRefluxSP, x.Reflux, inputs)
	next.Reboil = m.track(model.TagReboilSP, x.Reboil, inputs)
	next.Transfer = m.track(model.TagTransferSP, x.Transfer, inputs)

	// Spans normalising actuator deviations in the level and dP balances.
	const (
		refluxSpan   = 10.0
		transferSpan = 20.0
	)

	// Levels: mass-balance driven.
	feedNorm := feed / co.NominalFeed
	drumDelta := co.DrumRefluxGain*(next.Reflux-co.NominalReflux)/refluxSpan -
		co.DrumFeedGain*feedNorm +
		co.DrumTransferGain*(next.Transfer-co.NominalTransfer)/transferSpan
	next.DrumLvl = m.clamp(model.TagDrumLevel, x.DrumLvl+drumDelta)

	botDelta := co.BotFeedGain*feedNorm -
		co.BotTransferGain*(next.Transfer-co.NominalTransfer)/transferSpan -
		co.BotReboilGain*(next.Reboil-co.NominalReboil)
	next.BottomLvl = m.clamp(model.TagBottomsLevel, x.BottomLvl+botDelta)

	// Purity: separation energy balance.
	separation := co.SepRefluxGain*(next.Reflux-co.NominalReflux)/refluxSpan +
		co.SepReboilGain*(next.Reboil-co.NominalReboil) -
		co.SepFeedGain*(feedNorm-1.0) -
		co.SepFoulRebGain*foulReb -
		co.SepFoulCondGain*foulCond
	next.Purity = m.clamp(model.TagPurity, x.Purity+separation)

	// Differential pressure: vapor traffic plus fouling, relaxed toward the
	// implied equilibrium.
	vaporTraffic := co.DPReboilGain*(next.Reboil-co.NominalReboil) +
		co.DPRefluxGain*(next.Reflux-co.NominalReflux)/refluxSpan
	foulingDP := co.DPFoulingGain * (foulCond + foulReb)
	dPTarget := co.DPBase + vaporTraffic + foulingDP
	next.ColumnDP = m.clamp(model.TagColumnDP, x.ColumnDP+co.DPRelax*(dPTarget-x.ColumnDP))

	// Overhead temperature from the bubble point of the overhead product,
	// biased by condenser fouling.
	tVLE := m.bubblePoint(next.Purity)
	next.OverheadT = m.clamp(model.TagOverheadT,
		x.OverheadT+co.TempRelax*(tVLE+co.FoulTBias*foulCond-x.OverheadT))

	return next.toMap(), nil
}

// track applies the first-order actuator lag for one setpoint tag.
func (m *ColumnModel) track(sp model.Tag, current float64, inputs model.TagMap) float64 {
	act, _ := m.cfg.Actuator(sp)
	alpha := 1.0 - math.Exp(-1.0/act.Lag)
	return m.clamp(act.PV, current+alpha*(inputs[sp]-current))
}

func (m *ColumnModel) clamp(tag model.Tag, v float64) float64 {
	return clampTo(m.cfg.Bounds, tag, v)
}

// bubblePoint returns the overhead bubble-point temperature, falling back to
// the clamped correlation when the solver fails.
func (m *ColumnModel) bubblePoint(purity float64) float64 {
	if m.vle != nil {
		t, err := m.vle.BubblePointC(purity)
		if err == nil {
			return t
		}
		m.log.Debug(context.Background(), "vle solve failed; using correlation",
			logging.String("error", err.Error()),
			logging.Float("purity", purity))
	}
	return m.co.VLEBaseT + m.co.VLEGain*math.Pow(1.0-purity, m.co.VLEExponent)
}
