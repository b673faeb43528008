// Package scoring grades trainee performance turn by turn. Scores are
// advisory feedback for the trainee; nothing in the plant or safety path
// depends on them.
package scoring

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/plant-ots/model"
)

// TurnScore is the grade for a single committed turn, out of 100.
type TurnScore struct {
	Total     float64 `json:"total"`
	Quality   float64 `json:"quality"`   // product / duty performance, 0-40
	Pressure  float64 `json:"pressure"`  // hydraulic margin, 0-20
	Levels    float64 `json:"levels"`    // inventory control, 0-20
	Stability float64 `json:"stability"` // 20 minus safety penalties
	Grade     string  `json:"grade"`
}

// Safety penalties charged against the stability component.
const (
	penaltyESD       = 20.0
	penaltyInterlock = 10.0
	penaltyPerAlarm  = 3.0
)

// Scorer grades turns for one plant variant. The targets come from the
// plant's own configuration so the score agrees with the alarm limits.
type Scorer struct {
	cfg *model.PlantConfig
}

// NewScorer builds a scorer for the plant configuration.
func NewScorer(cfg *model.PlantConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// ScoreTurn grades one committed state and its safety outcome.
func (s *Scorer) ScoreTurn(state model.TagMap, safety model.SafetyResult) TurnScore {
	var sc TurnScore
	switch s.cfg.Type {
	case model.PlantExchanger:
		sc.Quality = s.exchangerQuality(state)
		sc.Pressure = s.pressureScore(state, model.TagHotDP, 20)
		sc.Levels = s.flowScore(state)
	default:
		sc.Quality = s.columnQuality(state)
		sc.Pressure = s.pressureScore(state, model.TagColumnDP, 20)
		sc.Levels = s.levelScore(state)
	}

	sc.Stability = 20.0
	if safety.ESDTriggered {
		sc.Stability -= penaltyESD
	}
	if safety.InterlockActive {
		sc.Stability -= penaltyInterlock
	}
	sc.Stability -= penaltyPerAlarm * float64(len(safety.Alarms))
	if sc.Stability < 0 {
		sc.Stability = 0
	}

	sc.Total = sc.Quality + sc.Pressure + sc.Levels + sc.Stability
	sc.Grade = grade(sc.Total)
	return sc
}

// columnQuality rewards purity near the spec limit with a Gaussian falloff.
func (s *Scorer) columnQuality(state model.TagMap) float64 {
	target, ok := s.cfg.AlarmThreshold(model.TagPurity)
	if !ok {
		return 0
	}
	err := state[model.TagPurity] - target
	if err >= 0 {
		return 40.0
	}
	return 40.0 * math.Exp(-(err*err)/(2*0.005*0.005))
}

// exchangerQuality rewards duty near the design point.
func (s *Scorer) exchangerQuality(state model.TagMap) float64 {
	design := s.cfg.Nominal[model.TagHeatDuty]
	if design <= 0 {
		return 0
	}
	frac := state[model.TagHeatDuty] / design
	if frac > 1 {
		frac = 1
	}
	return 40.0 * frac
}

// pressureScore rewards hydraulic margin below the alarm limit.
func (s *Scorer) pressureScore(state model.TagMap, tag model.Tag, max float64) float64 {
	alarm, ok := s.cfg.AlarmThreshold(tag)
	if !ok || alarm <= 0 {
		return 0
	}
	frac := state[tag] / alarm
	if frac > 1 {
		frac = 1
	}
	return max * (1 - frac*frac)
}

// levelScore rewards both column levels near mid-range.
func (s *Scorer) levelScore(state model.TagMap) float64 {
	score := func(lvl float64) float64 {
		err := lvl - 0.5
		return 10.0 * math.Exp(-(err*err)/(2*0.3*0.3))
	}
	return score(state[model.TagDrumLevel]) + score(state[model.TagBottomsLevel])
}

// flowScore rewards exchanger flows near the design flows.
func (s *Scorer) flowScore(state model.TagMap) float64 {
	score := func(tag model.Tag) float64 {
		design := s.cfg.Nominal[tag]
		if design <= 0 {
			return 0
		}
		err := (state[tag] - design) / design
		return 10.0 * math.Exp(-(err*err)/(2*0.25*0.25))
	}
	return score(model.TagHotFlow) + score(model.TagColdFlow)
}

func grade(total float64) string {
	switch {
	case total >= 90:
		return "A"
	case total >= 80:
		return "B"
	case total >= 70:
		return "C"
	case total >= 60:
		return "D"
	default:
		return "F"
	}
}

// Summary aggregates a session's turn scores.
type Summary struct {
	Turns      int     `json:"turns"`
	Average    float64 `json:"average"`
	Best       float64 `json:"best"`
	Worst      float64 `json:"worst"`
	ESDs       int     `json:"esds"`
	Interlocks int     `json:"interlocks"`
	Alarms     int     `json:"alarms"`
	Grade      string  `json:"grade"`
}

// Tracker accumulates turn scores into a running session summary.
type Tracker struct {
	sum    float64
	turns  int
	best   float64
	worst  float64
	esds   int
	locks  int
	alarms int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker { return &Tracker{worst: math.Inf(1), best: math.Inf(-1)} }

// Record folds one scored turn into the summary.
func (t *Tracker) Record(sc TurnScore, safety model.SafetyResult) {
	t.turns++
	t.sum += sc.Total
	t.best = math.Max(t.best, sc.Total)
	t.worst = math.Min(t.worst, sc.Total)
	if safety.ESDTriggered {
		t.esds++
	}
	if safety.InterlockActive {
		t.locks++
	}
	t.alarms += len(safety.Alarms)
}

// Summary returns the aggregate so far. A tracker with no recorded turns
// reports zeros and grade F.
func (t *Tracker) Summary() Summary {
	if t.turns == 0 {
		return Summary{Grade: "F"}
	}
	avg := t.sum / float64(t.turns)
	return Summary{
		Turns:      t.turns,
		Average:    avg,
		Best:       t.best,
		Worst:      t.worst,
		ESDs:       t.esds,
		Interlocks: t.locks,
		Alarms:     t.alarms,
		Grade:      grade(avg),
	}
}

// String renders the summary the way the simulator prints it.
func (s Summary) String() string {
	return fmt.Sprintf("turns=%d avg=%.1f best=%.1f worst=%.1f esd=%d interlock=%d alarms=%d grade=%s",
		s.Turns, s.Average, s.Best, s.Worst, s.ESDs, s.Interlocks, s.Alarms, s.Grade)
}
