package filling_line

import "time"

// Event types recorded in the line event log.
const (
	EventCommand        = "COMMAND"
	EventStatusChange   = "STATUS_CHANGE"
	EventCleaningChange = "CLEANING_CHANGE"
	EventAlarm          = "ALARM"
	EventEmergency      = "EMERGENCY"
)

// LineEvent is a single log entry.
type LineEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // COMMAND | STATUS_CHANGE | CLEANING_CHANGE | ALARM | EMERGENCY
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
