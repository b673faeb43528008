package model

// Tag names a process variable, setpoint, or disturbance parameter.
type Tag string

// TagMap is the flat numeric mapping used at the physics / safety / UI
// boundary. Inside a physics model the state is a typed struct; a TagMap is
// what crosses package boundaries.
type TagMap map[Tag]float64

// Clone returns an independent copy of the map.
func (m TagMap) Clone() TagMap {
	out := make(TagMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Get returns the value for tag, or def when the tag is absent.
func (m TagMap) Get(tag Tag, def float64) float64 {
	if v, ok := m[tag]; ok {
		return v
	}
	return def
}

// Merge returns a copy of m with every entry of over applied on top.
func (m TagMap) Merge(over TagMap) TagMap {
	out := m.Clone()
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Benzene column tags.
const (
	TagPurity       Tag = "xB_sd"   // benzene side-draw purity (mol fraction)
	TagColumnDP     Tag = "dP_col"  // column differential pressure (bar)
	TagOverheadT    Tag = "T_top"   // overhead temperature (deg C)
	TagDrumLevel    Tag = "L_Drum"  // reflux drum level (0-1)
	TagBottomsLevel Tag = "L_Bot"   // bottoms level (0-1)
	TagRefluxFlow   Tag = "F_Reflux"
	TagReboilDuty   Tag = "F_Reboil"
	TagTransferFlow Tag = "F_ToTol"

	TagRefluxSP   Tag = "SP_F_Reflux"
	TagReboilSP   Tag = "SP_F_Reboil"
	TagTransferSP Tag = "SP_F_ToTol"

	TagFeedRate    Tag = "F_feed"
	TagFeedBenzene Tag = "zB_feed"
	TagFoulingCond Tag = "Fouling_Cond"
	TagFoulingReb  Tag = "Fouling_Reb"
)

// Shell-and-tube heat exchanger tags.
const (
	TagHotInT    Tag = "T_hot_in"
	TagHotOutT   Tag = "T_hot_out"
	TagColdInT   Tag = "T_cold_in"
	TagColdOutT  Tag = "T_cold_out"
	TagHotFlow   Tag = "F_hot"
	TagColdFlow  Tag = "F_cold"
	TagHotDP     Tag = "dP_hot"
	TagColdDP    Tag = "dP_cold"
	TagHeatDuty  Tag = "Q_duty"
	TagFoulHot   Tag = "fouling_hot"
	TagFoulCold  Tag = "fouling_cold"
	TagTubeLeak  Tag = "tube_leak"
	TagApproachT Tag = "T_approach" // derived before safety evaluation

	TagHotFlowSP  Tag = "SP_F_hot"
	TagColdFlowSP Tag = "SP_F_cold"

	TagHotFeedT     Tag = "T_hot_in_feed"
	TagColdFeedT    Tag = "T_cold_in_feed"
	TagFoulHotRate  Tag = "fouling_hot_rate"  // percent per turn
	TagFoulColdRate Tag = "fouling_cold_rate" // percent per turn
	TagLeakSeverity Tag = "tube_leak_severity"
	TagHotPumpTrip  Tag = "hot_pump_trip"
	TagColdPumpTrip Tag = "cold_pump_trip"
)
