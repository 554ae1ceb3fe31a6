package service

import "time"

// LogFilter selects events by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", COMMAND, STATUS_CHANGE, CLEANING_CHANGE, ALARM, EMERGENCY
}
