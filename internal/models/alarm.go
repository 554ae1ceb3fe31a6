package models

import "time"

// AlarmClass groups alarms by the rule that raised them.
type AlarmClass string

const (
	AlarmImmediate   AlarmClass = "immediate"
	AlarmTrend       AlarmClass = "trend"
	AlarmSingleCycle AlarmClass = "single_cycle"
	AlarmEmergency   AlarmClass = "emergency"
)

// Alarm is one entry of the active alarm set. The set is rebuilt on every
// tick, so an Alarm has no identity beyond Key.
type Alarm struct {
	Key       string     `json:"key"`
	Parameter string     `json:"parameter,omitempty"`
	Class     AlarmClass `json:"class"`
	Message   string     `json:"message"`
}

// AlarmRecord is one cycle of a parameter in the rolling alarm history.
type AlarmRecord struct {
	Parameter        ParameterID `json:"parameter"`
	Actual           float64     `json:"actual"`
	Target           float64     `json:"target"`
	DeviationPercent float64     `json:"deviation_percent"`
	RecordedAt       time.Time   `json:"recorded_at"`
}
