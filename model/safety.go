package model

// SafetyResult is the outcome of one three-tier safety evaluation. It is
// constructed fresh each turn and treated as read-only by consumers.
//
// Tier ordering: ESD is checked first and exclusively, so when ESDTriggered is
// true the interlock flag is false and Alarms is empty. Alarms preserve
// evaluation order, not priority order.
type SafetyResult struct {
	Alarms []string `json:"alarms"`

	InterlockActive bool   `json:"interlock_active"`
	InterlockReason string `json:"interlock_reason,omitempty"`
	// AdjustedInputs holds only the setpoint tags an interlock overrides;
	// absent tags keep their originally applied values.
	AdjustedInputs TagMap `json:"adjusted_inputs,omitempty"`

	ESDTriggered bool   `json:"esd_triggered"`
	ESDReason    string `json:"esd_reason,omitempty"`
}

// Clear reports whether the evaluation found nothing at all.
func (r SafetyResult) Clear() bool {
	return len(r.Alarms) == 0 && !r.InterlockActive && !r.ESDTriggered
}

// Severity classifies event-log entries produced by a turn.
type Severity string

const (
	SeverityAction    Severity = "action"
	SeverityAlarm     Severity = "alarm"
	SeverityInterlock Severity = "interlock"
	SeverityESD       Severity = "esd"
)
