package model

import (
	"errors"
	"fmt"
)

// PlantType selects which physics variant a configuration describes.
type PlantType string

const (
	PlantColumn    PlantType = "column"
	PlantExchanger PlantType = "heat_exchanger"
)

var (
	ErrUnknownPlantType = errors.New("unknown plant type")
	ErrBadActuator      = errors.New("invalid actuator definition")
	ErrBadThresholds    = errors.New("invalid safety thresholds")
	ErrMissingNominal   = errors.New("missing nominal value")
	ErrMissingBound     = errors.New("missing state bound")
)

// Actuator describes one manipulated variable: the setpoint tag operators
// write, the process-value tag the plant tracks, its operating range, the
// per-turn move cap, and the first-order lag constant (in turns).
type Actuator struct {
	Setpoint Tag     `json:"setpoint"`
	PV       Tag     `json:"pv"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	MoveCap  float64 `json:"move_cap"`
	Lag      float64 `json:"lag"`
}

// Bound is the physical range a state variable is clamped to.
type Bound struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// AlarmRule raises an advisory alarm when the watched tag strictly exceeds
// (Above) or strictly falls below (not Above) the limit.
type AlarmRule struct {
	Tag     Tag     `json:"tag"`
	Limit   float64 `json:"limit"`
	Above   bool    `json:"above"`
	Message string  `json:"message"`
}

// Adjustment rewrites one applied setpoint when an interlock fires:
// value = clamp(applied*Scale + Delta, Floor, Ceil). Scale of zero means 1.
type Adjustment struct {
	Tag   Tag      `json:"tag"`
	Scale float64  `json:"scale,omitempty"`
	Delta float64  `json:"delta,omitempty"`
	Floor *float64 `json:"floor,omitempty"`
	Ceil  *float64 `json:"ceil,omitempty"`
}

// Apply computes the adjusted value for the rule from the currently applied
// setpoint value.
func (a Adjustment) Apply(applied float64) float64 {
	v := applied
	scale := a.Scale
	if scale == 0 {
		scale = 1
	}
	v = v*scale + a.Delta
	if a.Floor != nil && v < *a.Floor {
		v = *a.Floor
	}
	if a.Ceil != nil && v > *a.Ceil {
		v = *a.Ceil
	}
	return v
}

// InterlockRule fires independently of other interlocks; when several rules
// adjust the same setpoint, later rules apply on top of the earlier result.
type InterlockRule struct {
	Tag    Tag          `json:"tag"`
	Limit  float64      `json:"limit"`
	Above  bool         `json:"above"`
	Reason string       `json:"reason"`
	Adjust []Adjustment `json:"adjust"`
}

// ESDRule triggers an emergency shutdown. Comparisons are strict: a value
// exactly at the limit does not trip.
type ESDRule struct {
	Tag      Tag     `json:"tag"`
	Limit    float64 `json:"limit"`
	Above    bool    `json:"above"`
	Label    string  `json:"label"`
	Unit     string  `json:"unit,omitempty"`
	Decimals int     `json:"decimals,omitempty"`
}

// SafetyLimits holds the full three-tier rule set for one plant variant.
type SafetyLimits struct {
	ESD        []ESDRule       `json:"esd"`
	Interlocks []InterlockRule `json:"interlocks"`
	Alarms     []AlarmRule     `json:"alarms"`
}

// SafeAction is one step of the ESD safe-state transition applied to the
// committed state: value = clamp(current (or Set) + Add, Min, Max).
type SafeAction struct {
	Tag Tag      `json:"tag"`
	Set *float64 `json:"set,omitempty"`
	Add float64  `json:"add,omitempty"`
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Apply computes the safe value for the action given the current state value.
func (s SafeAction) Apply(current float64) float64 {
	v := current
	if s.Set != nil {
		v = *s.Set
	}
	v += s.Add
	if s.Min != nil && v < *s.Min {
		v = *s.Min
	}
	if s.Max != nil && v > *s.Max {
		v = *s.Max
	}
	return v
}

// PlantConfig is the construction-time configuration for one plant variant:
// nominal steady state, actuator definitions, physical bounds, three-tier
// safety limits, the ESD safe-state recipe, and variant correlation
// coefficients. Loaded once at session start; never re-derived at runtime.
type PlantConfig struct {
	Type             PlantType     `json:"type"`
	Name             string        `json:"name"`
	Nominal          TagMap        `json:"nominal"`
	Actuators        []Actuator    `json:"actuators"`
	Bounds           map[Tag]Bound `json:"bounds"`
	ScenarioDefaults TagMap        `json:"scenario_defaults"`
	Safety           SafetyLimits  `json:"safety"`
	SafeState        []SafeAction  `json:"safe_state"`

	Column    *ColumnCoefficients `json:"column,omitempty"`
	Exchanger *ExchangerSpec      `json:"exchanger,omitempty"`
}

// AlarmThreshold returns the alarm limit configured for a tag, if any.
func (c *PlantConfig) AlarmThreshold(tag Tag) (float64, bool) {
	for _, a := range c.Safety.Alarms {
		if a.Tag == tag {
			return a.Limit, true
		}
	}
	return 0, false
}

// Actuator returns the actuator definition whose setpoint tag matches.
func (c *PlantConfig) Actuator(setpoint Tag) (Actuator, bool) {
	for _, a := range c.Actuators {
		if a.Setpoint == setpoint {
			return a, true
		}
	}
	return Actuator{}, false
}

// Validate checks the configuration is complete and internally ordered.
// A failed validation is fatal at construction time: the system refuses to
// run with a partial safety configuration.
func (c *PlantConfig) Validate() error {
	switch c.Type {
	case PlantColumn, PlantExchanger:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPlantType, c.Type)
	}

	if len(c.Actuators) == 0 {
		return fmt.Errorf("%w: no actuators defined", ErrBadActuator)
	}
	for _, a := range c.Actuators {
		if a.Setpoint == "" || a.PV == "" {
			return fmt.Errorf("%w: empty tag", ErrBadActuator)
		}
		if a.Min >= a.Max {
			return fmt.Errorf("%w: %s range [%g, %g]", ErrBadActuator, a.Setpoint, a.Min, a.Max)
		}
		if a.MoveCap <= 0 {
			return fmt.Errorf("%w: %s move cap %g", ErrBadActuator, a.Setpoint, a.MoveCap)
		}
		if a.Lag <= 0 {
			return fmt.Errorf("%w: %s lag %g", ErrBadActuator, a.Setpoint, a.Lag)
		}
		if _, ok := c.Nominal[a.PV]; !ok {
			return fmt.Errorf("%w: actuator pv %s", ErrMissingNominal, a.PV)
		}
	}

	for tag := range c.Nominal {
		if _, ok := c.Bounds[tag]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingBound, tag)
		}
	}

	// Severity ordering per monitored quantity: the alarm threshold must be
	// reached before the interlock threshold, which must be reached before
	// the ESD threshold.
	for _, esd := range c.Safety.ESD {
		alarm, ok := c.alarmFor(esd.Tag, esd.Above)
		if !ok {
			return fmt.Errorf("%w: esd on %s has no alarm tier", ErrBadThresholds, esd.Tag)
		}
		if !lessSevere(alarm.Limit, esd.Limit, esd.Above) {
			return fmt.Errorf("%w: %s alarm %g not looser than esd %g",
				ErrBadThresholds, esd.Tag, alarm.Limit, esd.Limit)
		}
		if il, ok := c.interlockFor(esd.Tag, esd.Above); ok {
			if !lessSevere(il.Limit, esd.Limit, esd.Above) {
				return fmt.Errorf("%w: %s interlock %g not looser than esd %g",
					ErrBadThresholds, esd.Tag, il.Limit, esd.Limit)
			}
		}
	}
	for _, il := range c.Safety.Interlocks {
		alarm, ok := c.alarmFor(il.Tag, il.Above)
		if !ok {
			return fmt.Errorf("%w: interlock on %s has no alarm tier", ErrBadThresholds, il.Tag)
		}
		if !lessSevere(alarm.Limit, il.Limit, il.Above) {
			return fmt.Errorf("%w: %s alarm %g not looser than interlock %g",
				ErrBadThresholds, il.Tag, alarm.Limit, il.Limit)
		}
		if len(il.Adjust) == 0 {
			return fmt.Errorf("%w: interlock on %s adjusts nothing", ErrBadThresholds, il.Tag)
		}
	}

	return nil
}

func (c *PlantConfig) alarmFor(tag Tag, above bool) (AlarmRule, bool) {
	for _, a := range c.Safety.Alarms {
		if a.Tag == tag && a.Above == above {
			return a, true
		}
	}
	return AlarmRule{}, false
}

func (c *PlantConfig) interlockFor(tag Tag, above bool) (InterlockRule, bool) {
	for _, il := range c.Safety.Interlocks {
		if il.Tag == tag && il.Above == above {
			return il, true
		}
	}
	return InterlockRule{}, false
}

// lessSevere reports whether limit a is reached strictly before limit b in
// the direction of increasing severity.
func lessSevere(a, b float64, above bool) bool {
	if above {
		return a < b
	}
	return a > b
}
