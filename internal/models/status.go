package models

// MachineStatus is the lifecycle state of the filling machine.
type MachineStatus string

const (
	StatusStopped     MachineStatus = "Stopped"
	StatusStarting    MachineStatus = "Starting"
	StatusRunning     MachineStatus = "Running"
	StatusStopping    MachineStatus = "Stopping"
	StatusError       MachineStatus = "Error"
	StatusMaintenance MachineStatus = "Maintenance"
)

// CleaningStatus is the state of the cleaning cycle (CIP/SIP/changeover).
type CleaningStatus string

const (
	CleaningNormal     CleaningStatus = "Normal Production"
	CleaningCIP        CleaningStatus = "CIP Active"
	CleaningSIP        CleaningStatus = "SIP Active"
	CleaningSanitizing CleaningStatus = "Sanitizing"
)

// Quality check results.
const (
	QualityPass = "Pass"
	QualityFail = "Fail"
)
