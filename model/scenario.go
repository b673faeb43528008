package model

// Scenario is a named set of disturbance parameters with training metadata.
// The parameter map is merged over the plant's scenario defaults each turn,
// so a scenario only carries the tags it changes.
type Scenario struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Difficulty  string    `json:"difficulty"` // Beginner, Intermediate, Advanced
	Plant       PlantType `json:"plant"`
	Params      TagMap    `json:"params"`
}

// ScenarioLibrary is the built-in set of training scenarios with progressive
// difficulty.
var ScenarioLibrary = []Scenario{
	{
		Name:        "Normal Operations",
		Description: "Standard feed conditions. Maintain on-spec production.",
		Difficulty:  "Beginner",
		Plant:       PlantColumn,
		Params:      TagMap{TagFeedRate: 80.0, TagFeedBenzene: 0.60},
	},
	{
		Name:        "Rich Feed",
		Description: "Higher benzene content in the feed stream. Watch for flooding.",
		Difficulty:  "Beginner",
		Plant:       PlantColumn,
		Params:      TagMap{TagFeedRate: 80.0, TagFeedBenzene: 0.72},
	},
	{
		Name:        "High Throughput",
		Description: "Increased feed rate. Balance quality against capacity.",
		Difficulty:  "Intermediate",
		Plant:       PlantColumn,
		Params:      TagMap{TagFeedRate: 110.0, TagFeedBenzene: 0.60},
	},
	{
		Name:        "Condenser Fouling",
		Description: "Degraded condenser performance. Temperature will rise.",
		Difficulty:  "Intermediate",
		Plant:       PlantColumn,
		Params:      TagMap{TagFoulingCond: 0.40},
	},
	{
		Name:        "Reboiler Fouling",
		Description: "Reduced reboiler efficiency. Harder to maintain purity.",
		Difficulty:  "Intermediate",
		Plant:       PlantColumn,
		Params:      TagMap{TagFoulingReb: 0.35},
	},
	{
		Name:        "Double Fouling",
		Description: "Both condenser and reboiler fouled. Manage dP carefully.",
		Difficulty:  "Advanced",
		Plant:       PlantColumn,
		Params: TagMap{
			TagFeedRate: 85.0, TagFeedBenzene: 0.58,
			TagFoulingCond: 0.30, TagFoulingReb: 0.30,
		},
	},
	{
		Name:        "Storm Mode",
		Description: "High feed rate with fouling and lean feed. All challenges at once.",
		Difficulty:  "Advanced",
		Plant:       PlantColumn,
		Params: TagMap{
			TagFeedRate: 115.0, TagFeedBenzene: 0.48,
			TagFoulingCond: 0.45, TagFoulingReb: 0.40,
		},
	},
	{
		Name:        "Design Duty",
		Description: "Clean exchanger at design conditions.",
		Difficulty:  "Beginner",
		Plant:       PlantExchanger,
		Params:      TagMap{},
	},
	{
		Name:        "Fouling Buildup",
		Description: "Both sides foul steadily. Keep the approach temperature healthy.",
		Difficulty:  "Intermediate",
		Plant:       PlantExchanger,
		Params:      TagMap{TagFoulHotRate: 2.0, TagFoulColdRate: 1.5},
	},
	{
		Name:        "Hot Feed Excursion",
		Description: "Hot inlet runs 20 C above design. Watch the outlet limits.",
		Difficulty:  "Intermediate",
		Plant:       PlantExchanger,
		Params:      TagMap{TagHotFeedT: 140.0},
	},
	{
		Name:        "Tube Rupture",
		Description: "A developing tube leak contaminates the cold side.",
		Difficulty:  "Advanced",
		Plant:       PlantExchanger,
		Params:      TagMap{TagLeakSeverity: 0.20, TagFoulHotRate: 1.0},
	},
}

// FindScenario looks up a scenario by name, optionally filtered by plant type.
func FindScenario(name string, plant PlantType) (Scenario, bool) {
	for _, s := range ScenarioLibrary {
		if s.Name == name && (plant == "" || s.Plant == plant) {
			return s, true
		}
	}
	return Scenario{}, false
}

// ScenariosFor returns the library entries for one plant type.
func ScenariosFor(plant PlantType) []Scenario {
	var out []Scenario
	for _, s := range ScenarioLibrary {
		if s.Plant == plant {
			out = append(out, s)
		}
	}
	return out
}
