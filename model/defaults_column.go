package model

// ColumnCoefficients are the correlation coefficients of the benzene column
// model. A config that omits the block gets the design defaults; a config that
// provides one is taken as-is.
type ColumnCoefficients struct {
	NominalFeed     float64 `json:"nominal_feed"`
	NominalReflux   float64 `json:"nominal_reflux"`
	NominalReboil   float64 `json:"nominal_reboil"`
	NominalTransfer float64 `json:"nominal_transfer"`

	DrumRefluxGain   float64 `json:"drum_reflux_gain"`
	DrumFeedGain     float64 `json:"drum_feed_gain"`
	DrumTransferGain float64 `json:"drum_transfer_gain"`
	BotFeedGain      float64 `json:"bot_feed_gain"`
	BotTransferGain  float64 `json:"bot_transfer_gain"`
	BotReboilGain    float64 `json:"bot_reboil_gain"`

	SepRefluxGain   float64 `json:"sep_reflux_gain"`
	SepReboilGain   float64 `json:"sep_reboil_gain"`
	SepFeedGain     float64 `json:"sep_feed_gain"`
	SepFoulRebGain  float64 `json:"sep_foul_reb_gain"`
	SepFoulCondGain float64 `json:"sep_foul_cond_gain"`

	DPBase        float64 `json:"dp_base"`
	DPReboilGain  float64 `json:"dp_reboil_gain"`
	DPRefluxGain  float64 `json:"dp_reflux_gain"`
	DPFoulingGain float64 `json:"dp_fouling_gain"`
	DPRelax       float64 `json:"dp_relax"`

	VLEBaseT    float64 `json:"vle_base_t"`
	VLEGain     float64 `json:"vle_gain"`
	VLEExponent float64 `json:"vle_exponent"`
	FoulTBias   float64 `json:"foul_t_bias"`
	TempRelax   float64 `json:"temp_relax"`
}

// DefaultColumnCoefficients returns the design coefficients of the column.
func DefaultColumnCoefficients() ColumnCoefficients {
	return ColumnCoefficients{
		NominalFeed:     80.0,
		NominalReflux:   25.0,
		NominalReboil:   1.2,
		NominalTransfer: 55.0,

		DrumRefluxGain:   0.02,
		DrumFeedGain:     0.015,
		DrumTransferGain: 0.01,
		BotFeedGain:      0.015,
		BotTransferGain:  0.02,
		BotReboilGain:    0.005,

		SepRefluxGain:   0.003,
		SepReboilGain:   0.004,
		SepFeedGain:     0.002,
		SepFoulRebGain:  0.002,
		SepFoulCondGain: 0.001,

		DPBase:        0.08,
		DPReboilGain:  0.05,
		DPRefluxGain:  0.03,
		DPFoulingGain: 0.08,
		DPRelax:       0.3,

		VLEBaseT:    80.1,
		VLEGain:     21.0,
		VLEExponent: 0.85,
		FoulTBias:   2.0,
		TempRelax:   0.4,
	}
}

func ptr(v float64) *float64 { return &v }

// DefaultColumnConfig returns the built-in benzene column configuration:
// nominal steady state, actuator ranges and move caps, physical bounds, the
// three-tier safety limits, and the ESD safe-state recipe.
func DefaultColumnConfig() *PlantConfig {
	coeff := DefaultColumnCoefficients()
	return &PlantConfig{
		Type: PlantColumn,
		Name: "Benzene column",
		Nominal: TagMap{
			TagPurity:       0.9950,
			TagColumnDP:     0.08,
			TagOverheadT:    84.5,
			TagDrumLevel:    0.65,
			TagBottomsLevel: 0.56,
			TagRefluxFlow:   25.0,
			TagReboilDuty:   1.20,
			TagTransferFlow: 55.0,
		},
		Actuators: []Actuator{
			{Setpoint: TagRefluxSP, PV: TagRefluxFlow, Min: 10.0, Max: 45.0, MoveCap: 2.0, Lag: 0.5},
			{Setpoint: TagReboilSP, PV: TagReboilDuty, Min: 0.3, Max: 3.5, MoveCap: 0.15, Lag: 0.5},
			{Setpoint: TagTransferSP, PV: TagTransferFlow, Min: 30.0, Max: 90.0, MoveCap: 5.0, Lag: 0.25},
		},
		Bounds: map[Tag]Bound{
			TagPurity:       {Lo: 0.80, Hi: 1.0},
			TagColumnDP:     {Lo: 0.0, Hi: 0.5},
			TagOverheadT:    {Lo: 60.0, Hi: 130.0},
			TagDrumLevel:    {Lo: 0.0, Hi: 1.0},
			TagBottomsLevel: {Lo: 0.0, Hi: 1.0},
			TagRefluxFlow:   {Lo: 10.0, Hi: 45.0},
			TagReboilDuty:   {Lo: 0.3, Hi: 3.5},
			TagTransferFlow: {Lo: 30.0, Hi: 90.0},
		},
		ScenarioDefaults: TagMap{
			TagFeedRate:    80.0,
			TagFeedBenzene: 0.60,
			TagFoulingCond: 0.0,
			TagFoulingReb:  0.0,
		},
		Safety: SafetyLimits{
			ESD: []ESDRule{
				{Tag: TagColumnDP, Limit: 0.34, Above: true, Label: "column dP", Unit: "bar", Decimals: 3},
				{Tag: TagOverheadT, Limit: 103.0, Above: true, Label: "overhead T", Unit: "C", Decimals: 1},
				{Tag: TagDrumLevel, Limit: 0.05, Above: false, Label: "drum level", Decimals: 3},
			},
			Interlocks: []InterlockRule{
				{
					Tag: TagColumnDP, Limit: 0.33, Above: true,
					Reason: "Flooding interlock: high column dP",
					Adjust: []Adjustment{
						{Tag: TagReboilSP, Delta: -0.2, Floor: ptr(0.3)},
						{Tag: TagRefluxSP, Delta: 2.0, Ceil: ptr(45.0)},
					},
				},
			},
			Alarms: []AlarmRule{
				{Tag: TagColumnDP, Limit: 0.30, Above: true, Message: "High column ΔP"},
				{Tag: TagOverheadT, Limit: 100.0, Above: true, Message: "High overhead temperature"},
				{Tag: TagPurity, Limit: 0.9990, Above: false, Message: "Off-spec benzene purity"},
				{Tag: TagDrumLevel, Limit: 0.10, Above: false, Message: "Low drum level"},
				{Tag: TagBottomsLevel, Limit: 0.10, Above: false, Message: "Low bottoms level"},
			},
		},
		SafeState: []SafeAction{
			{Tag: TagPurity, Add: -0.002, Min: ptr(0.90)},
			{Tag: TagColumnDP, Max: ptr(0.25)},
			{Tag: TagOverheadT, Add: -5.0},
			{Tag: TagDrumLevel, Min: ptr(0.30), Max: ptr(0.70)},
			{Tag: TagBottomsLevel, Min: ptr(0.30), Max: ptr(0.70)},
			{Tag: TagRefluxFlow, Set: ptr(20.0)},
			{Tag: TagReboilDuty, Set: ptr(0.5)},
			{Tag: TagTransferFlow, Set: ptr(45.0)},
		},
		Column: &coeff,
	}
}
