package models

import (
	"math"
	"time"
)

// Identity describes the machine. It never changes after construction.
type Identity struct {
	Name              string `json:"machine_name"`
	SerialNumber      string `json:"machine_serial_number"`
	Plant             string `json:"plant"`
	ProductionSegment string `json:"production_segment"`
	ProductionLine    string `json:"production_line"`
}

// ProductionOrder is the order currently loaded on the line.
type ProductionOrder struct {
	Number      string `json:"production_order"`
	Article     string `json:"article"`
	Quantity    uint32 `json:"quantity"`
	GoodBottles uint32 `json:"good_bottles_order"`
	BadBottles  uint32 `json:"bad_bottles_order"`
}

// TotalBottles is the number of bottles produced for this order.
func (o ProductionOrder) TotalBottles() uint32 {
	return o.GoodBottles + o.BadBottles
}

// Progress returns the order completion in percent, 0 when no quantity is set.
func (o ProductionOrder) Progress() float64 {
	if o.Quantity == 0 {
		return 0
	}
	return float64(o.TotalBottles()) / float64(o.Quantity) * 100.0
}

// ParameterID identifies one physical process parameter.
type ParameterID int

const (
	FillVolume ParameterID = iota
	LineSpeed
	ProductTemperature
	CO2Pressure
	CapTorque
	CycleTime

	ParameterCount
)

var parameterNames = [ParameterCount]string{
	FillVolume:         "FillVolume",
	LineSpeed:          "LineSpeed",
	ProductTemperature: "ProductTemperature",
	CO2Pressure:        "CO2Pressure",
	CapTorque:          "CapTorque",
	CycleTime:          "CycleTime",
}

func (p ParameterID) String() string {
	if p < 0 || p >= ParameterCount {
		return "Unknown"
	}
	return parameterNames[p]
}

// ProcessParameter holds the setpoint and the last simulated value of a parameter.
type ProcessParameter struct {
	Target float64 `json:"target"`
	Actual float64 `json:"actual"`
}

// Deviation is the signed difference actual - target.
func (p ProcessParameter) Deviation() float64 {
	return p.Actual - p.Target
}

// DeviationPercent returns |actual-target| / target * 100.
// A zero target yields 0 instead of dividing by zero.
func (p ProcessParameter) DeviationPercent() float64 {
	return DeviationPercent(p.Actual, p.Target)
}

// DeviationPercent is the relative deviation of actual from target in percent.
func DeviationPercent(actual, target float64) float64 {
	if target == 0 {
		return 0
	}
	return math.Abs(actual-target) / math.Abs(target) * 100.0
}

// Parameters is the full set of process parameters, indexed by ParameterID.
type Parameters [ParameterCount]ProcessParameter

// Counters are the bottle counters since startup (or the last reset).
type Counters struct {
	GoodBottles      uint32 `json:"good_bottles"`
	BadBottlesVolume uint32 `json:"bad_bottles_volume"`
	BadBottlesWeight uint32 `json:"bad_bottles_weight"`
	BadBottlesCap    uint32 `json:"bad_bottles_cap"`
	BadBottlesOther  uint32 `json:"bad_bottles_other"`
}

func (c Counters) TotalBadBottles() uint32 {
	return c.BadBottlesVolume + c.BadBottlesWeight + c.BadBottlesCap + c.BadBottlesOther
}

func (c Counters) TotalBottles() uint32 {
	return c.GoodBottles + c.TotalBadBottles()
}

// MachineState is a consistent, detached copy of everything the machine exposes.
type MachineState struct {
	Identity           Identity        `json:"identity"`
	Order              ProductionOrder `json:"order"`
	LotNumber          string          `json:"current_lot_number"`
	ExpirationDate     time.Time       `json:"expiration_date"`
	Params             Parameters      `json:"parameters"`
	Status             MachineStatus   `json:"machine_status"`
	Cleaning           CleaningStatus  `json:"cleaning_cycle_status"`
	TankLevel          float64         `json:"product_level_tank"`
	Station            int             `json:"current_station"`
	QualityCheckWeight string          `json:"quality_check_weight"`
	QualityCheckLevel  string          `json:"quality_check_level"`
	Counters           Counters        `json:"counters"`
	Alarms             []Alarm         `json:"active_alarms"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// FillAccuracyDeviation is the signed fill volume error in ml.
func (s MachineState) FillAccuracyDeviation() float64 {
	return s.Params[FillVolume].Deviation()
}

// AlarmMessages returns the human readable text of all active alarms.
func (s MachineState) AlarmMessages() []string {
	out := make([]string, 0, len(s.Alarms))
	for _, a := range s.Alarms {
		out = append(out, a.Message)
	}
	return out
}
