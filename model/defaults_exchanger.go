package model

// ExchangerSpec holds the design parameters of the shell-and-tube heat
// exchanger correlation. A config that omits the block gets the design
// defaults; a config that provides one is taken as-is.
type ExchangerSpec struct {
	DesignUA float64 `json:"design_ua"` // kW/K, clean
	HotTau   float64 `json:"hot_tau"`   // hot-side thermal lag (turns)
	ColdTau  float64 `json:"cold_tau"`  // cold-side thermal lag (turns)
	CpHot    float64 `json:"cp_hot"`    // kJ/kg.K
	CpCold   float64 `json:"cp_cold"`   // kJ/kg.K

	NominalHotFlow  float64 `json:"nominal_hot_flow"`
	NominalColdFlow float64 `json:"nominal_cold_flow"`
	BaseHotDP       float64 `json:"base_hot_dp"`
	BaseColdDP      float64 `json:"base_cold_dp"`
	FlowExponent    float64 `json:"flow_exponent"`
	FoulHotDPGain   float64 `json:"foul_hot_dp_gain"`
	FoulColdDPGain  float64 `json:"foul_cold_dp_gain"`

	FoulHotUAGain    float64 `json:"foul_hot_ua_gain"`
	FoulColdUAGain   float64 `json:"foul_cold_ua_gain"`
	MinUAFactor      float64 `json:"min_ua_factor"`
	MaxEffectiveness float64 `json:"max_effectiveness"`
	LeakMixFraction  float64 `json:"leak_mix_fraction"`
}

// DefaultExchangerSpec returns the design-case exchanger parameters.
func DefaultExchangerSpec() ExchangerSpec {
	return ExchangerSpec{
		DesignUA: 80.0,
		HotTau:   2.0,
		ColdTau:  1.5,
		CpHot:    4.2,
		CpCold:   4.18,

		NominalHotFlow:  30.0,
		NominalColdFlow: 50.0,
		BaseHotDP:       0.8,
		BaseColdDP:      0.4,
		FlowExponent:    1.8,
		FoulHotDPGain:   2.0,
		FoulColdDPGain:  1.5,

		FoulHotUAGain:    0.7,
		FoulColdUAGain:   0.5,
		MinUAFactor:      0.1,
		MaxEffectiveness: 0.95,
		LeakMixFraction:  0.1,
	}
}

// DefaultExchangerConfig returns the built-in heat exchanger configuration.
func DefaultExchangerConfig() *PlantConfig {
	spec := DefaultExchangerSpec()
	return &PlantConfig{
		Type: PlantExchanger,
		Name: "Shell-and-tube heat exchanger",
		Nominal: TagMap{
			TagHotInT:   120.0,
			TagHotOutT:  80.0,
			TagColdInT:  25.0,
			TagColdOutT: 49.0,
			TagHotFlow:  30.0,
			TagColdFlow: 50.0,
			TagHotDP:    0.8,
			TagColdDP:   0.4,
			TagHeatDuty: 5020.0,
			TagFoulHot:  0.0,
			TagFoulCold: 0.0,
			TagTubeLeak: 0.0,
		},
		Actuators: []Actuator{
			{Setpoint: TagHotFlowSP, PV: TagHotFlow, Min: 0.0, Max: 100.0, MoveCap: 5.0, Lag: 0.5},
			{Setpoint: TagColdFlowSP, PV: TagColdFlow, Min: 0.0, Max: 150.0, MoveCap: 10.0, Lag: 0.5},
		},
		Bounds: map[Tag]Bound{
			TagHotInT:   {Lo: 20.0, Hi: 200.0},
			TagHotOutT:  {Lo: 20.0, Hi: 200.0},
			TagColdInT:  {Lo: 10.0, Hi: 80.0},
			TagColdOutT: {Lo: 10.0, Hi: 80.0},
			TagHotFlow:  {Lo: 0.0, Hi: 100.0},
			TagColdFlow: {Lo: 0.0, Hi: 150.0},
			TagHotDP:    {Lo: 0.0, Hi: 5.0},
			TagColdDP:   {Lo: 0.0, Hi: 3.0},
			TagHeatDuty: {Lo: 0.0, Hi: 20000.0},
			TagFoulHot:  {Lo: 0.0, Hi: 0.95},
			TagFoulCold: {Lo: 0.0, Hi: 0.95},
			TagTubeLeak: {Lo: 0.0, Hi: 1.0},
		},
		ScenarioDefaults: TagMap{
			TagHotFeedT:     120.0,
			TagColdFeedT:    25.0,
			TagFoulHotRate:  0.0,
			TagFoulColdRate: 0.0,
			TagLeakSeverity: 0.0,
			TagHotPumpTrip:  0.0,
			TagColdPumpTrip: 0.0,
		},
		Safety: SafetyLimits{
			ESD: []ESDRule{
				{Tag: TagHotOutT, Limit: 150.0, Above: true, Label: "hot outlet T", Unit: "C", Decimals: 1},
				{Tag: TagColdOutT, Limit: 60.0, Above: true, Label: "cold outlet T", Unit: "C", Decimals: 1},
				{Tag: TagHotDP, Limit: 2.5, Above: true, Label: "hot side dP", Unit: "bar", Decimals: 2},
				{Tag: TagColdDP, Limit: 1.5, Above: true, Label: "cold side dP", Unit: "bar", Decimals: 2},
				{Tag: TagTubeLeak, Limit: 0.30, Above: true, Label: "tube leak severity", Decimals: 2},
			},
			Interlocks: []InterlockRule{
				{
					Tag: TagHotDP, Limit: 2.3, Above: true,
					Reason: "High dP interlock: shed hot-side load",
					Adjust: []Adjustment{
						{Tag: TagHotFlowSP, Delta: -5.0, Floor: ptr(10.0)},
						{Tag: TagColdFlowSP, Delta: 10.0, Ceil: ptr(100.0)},
					},
				},
				{
					Tag: TagHotOutT, Limit: 145.0, Above: true,
					Reason: "High temperature interlock: boost cooling",
					Adjust: []Adjustment{
						{Tag: TagColdFlowSP, Delta: 15.0, Ceil: ptr(100.0)},
					},
				},
				{
					Tag: TagFoulHot, Limit: 0.75, Above: true,
					Reason: "Critical fouling interlock: reduce flows",
					Adjust: []Adjustment{
						{Tag: TagHotFlowSP, Scale: 0.7, Floor: ptr(10.0)},
						{Tag: TagColdFlowSP, Scale: 0.7, Floor: ptr(15.0)},
					},
				},
				{
					Tag: TagFoulCold, Limit: 0.75, Above: true,
					Reason: "Critical fouling interlock: reduce flows",
					Adjust: []Adjustment{
						{Tag: TagHotFlowSP, Scale: 0.7, Floor: ptr(10.0)},
						{Tag: TagColdFlowSP, Scale: 0.7, Floor: ptr(15.0)},
					},
				},
			},
			Alarms: []AlarmRule{
				{Tag: TagHotOutT, Limit: 140.0, Above: true, Message: "High hot outlet temperature"},
				{Tag: TagColdOutT, Limit: 55.0, Above: true, Message: "High cold outlet temperature"},
				{Tag: TagHotDP, Limit: 2.0, Above: true, Message: "High hot side pressure drop"},
				{Tag: TagColdDP, Limit: 1.2, Above: true, Message: "High cold side pressure drop"},
				{Tag: TagHotFlow, Limit: 10.0, Above: false, Message: "Low hot side flow"},
				{Tag: TagColdFlow, Limit: 15.0, Above: false, Message: "Low cold side flow"},
				{Tag: TagFoulHot, Limit: 0.50, Above: true, Message: "High hot side fouling"},
				{Tag: TagFoulCold, Limit: 0.50, Above: true, Message: "High cold side fouling"},
				{Tag: TagTubeLeak, Limit: 0.10, Above: true, Message: "Tube leakage detected"},
				{Tag: TagApproachT, Limit: 5.0, Above: false, Message: "Low temperature approach"},
			},
		},
		SafeState: []SafeAction{
			{Tag: TagHotFlow, Set: ptr(10.0)},
			{Tag: TagColdFlow, Set: ptr(20.0)},
			{Tag: TagHotOutT, Max: ptr(80.0)},
			{Tag: TagColdOutT, Max: ptr(50.0)},
			{Tag: TagHotDP, Max: ptr(0.5)},
			{Tag: TagColdDP, Max: ptr(0.3)},
		},
		Exchanger: &spec,
	}
}
