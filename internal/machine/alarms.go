package machine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"filling_line/internal/models"
)

// Alarm thresholds.
const (
	HistorySize = 10

	FillDeviationPercent   = 1.0
	TemperatureDeviationC  = 2.0
	CO2DeviationBar        = 0.2
	TankLowPercent         = 15.0
	CapTorqueDeviationPerc = 10.0

	TrendCycles           = 3
	TrendDeviationPercent = 3.0
	SpikeDeviationPercent = 8.0
)

const emergencyStopMessage = "EMERGENCY STOP ACTIVATED - Manual intervention required"

// AlarmInput is the per-tick view of the process the alarm engine evaluates.
type AlarmInput struct {
	Params    models.Parameters
	TankLevel float64
	At        time.Time
}

// history is a fixed ring of the newest HistorySize records of one parameter.
type history struct {
	records [HistorySize]models.AlarmRecord
	next    int
	size    int
}

func (h *history) push(r models.AlarmRecord) {
	h.records[h.next] = r
	h.next = (h.next + 1) % HistorySize
	if h.size < HistorySize {
		h.size++
	}
}

// newest returns up to n records, newest first.
func (h *history) newest(n int) []models.AlarmRecord {
	if n > h.size {
		n = h.size
	}
	out := make([]models.AlarmRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + HistorySize) % HistorySize
		out = append(out, h.records[idx])
	}
	return out
}

// AlarmEngine keeps the rolling deviation history and derives the active
// alarm set from it. It is not safe for concurrent use; Machine serializes it.
type AlarmEngine struct {
	history [models.ParameterCount]history
}

func NewAlarmEngine() *AlarmEngine {
	return &AlarmEngine{}
}

// History returns the retained records of p, newest first.
func (e *AlarmEngine) History(p models.ParameterID) []models.AlarmRecord {
	if p < 0 || p >= models.ParameterCount {
		return nil
	}
	return e.history[p].newest(HistorySize)
}

// Evaluate records one cycle and returns the alarms that hold for it.
// The result is built from scratch on every call.
func (e *AlarmEngine) Evaluate(in AlarmInput) []models.Alarm {
	for id := models.ParameterID(0); id < models.ParameterCount; id++ {
		p := in.Params[id]
		e.history[id].push(models.AlarmRecord{
			Parameter:        id,
			Actual:           p.Actual,
			Target:           p.Target,
			DeviationPercent: p.DeviationPercent(),
			RecordedAt:       in.At,
		})
	}

	alarms := immediateAlarms(in)
	for id := models.ParameterID(0); id < models.ParameterCount; id++ {
		alarms = append(alarms, e.trendAlarms(id)...)
	}
	return alarms
}

func immediateAlarms(in AlarmInput) []models.Alarm {
	var out []models.Alarm

	fill := in.Params[models.FillVolume]
	if fill.DeviationPercent() > FillDeviationPercent {
		out = append(out, immediate(models.FillVolume.String(),
			fmt.Sprintf("ALARM: Fill deviation %.2fml exceeds ±1%%", fill.Deviation())))
	}

	temp := in.Params[models.ProductTemperature]
	if math.Abs(temp.Deviation()) > TemperatureDeviationC {
		out = append(out, immediate(models.ProductTemperature.String(),
			fmt.Sprintf("ALARM: Product temperature %.1f°C exceeds ±2°C", temp.Actual)))
	}

	co2 := in.Params[models.CO2Pressure]
	if math.Abs(co2.Deviation()) > CO2DeviationBar {
		out = append(out, immediate(models.CO2Pressure.String(),
			fmt.Sprintf("ALARM: CO2 pressure %.2f bar deviates more than ±0.2 bar", co2.Actual)))
	}

	if in.TankLevel < TankLowPercent {
		out = append(out, immediate("TankLevel",
			fmt.Sprintf("ALARM: Tank level %.1f%% too low (< 15%%)", in.TankLevel)))
	}

	torque := in.Params[models.CapTorque]
	if torque.DeviationPercent() > CapTorqueDeviationPerc {
		out = append(out, immediate(models.CapTorque.String(),
			fmt.Sprintf("ALARM: Cap torque %.1f Nm outside ±10%% range", torque.Actual)))
	}

	return out
}

func (e *AlarmEngine) trendAlarms(id models.ParameterID) []models.Alarm {
	recent := e.history[id].newest(TrendCycles)
	if len(recent) == 0 {
		return nil
	}

	var out []models.Alarm
	name := id.String()

	if len(recent) >= TrendCycles && allAbove(recent, TrendDeviationPercent) {
		out = append(out, models.Alarm{
			Key:       name + "/" + string(models.AlarmTrend),
			Parameter: name,
			Class:     models.AlarmTrend,
			Message: fmt.Sprintf("ALARM: %s deviation > 3%% for 3 cycles in a row. Values: %s",
				name, joinValues(recent)),
		})
	}

	if recent[0].DeviationPercent > SpikeDeviationPercent {
		out = append(out, models.Alarm{
			Key:       name + "/" + string(models.AlarmSingleCycle),
			Parameter: name,
			Class:     models.AlarmSingleCycle,
			Message: fmt.Sprintf("ALARM: %s deviation > 8%% in single cycle. Recent values: %s",
				name, joinValues(recent)),
		})
	}
	return out
}

func immediate(param, msg string) models.Alarm {
	return models.Alarm{
		Key:       param + "/" + string(models.AlarmImmediate),
		Parameter: param,
		Class:     models.AlarmImmediate,
		Message:   msg,
	}
}

func emergencyAlarm() models.Alarm {
	return models.Alarm{
		Key:     string(models.AlarmEmergency),
		Class:   models.AlarmEmergency,
		Message: emergencyStopMessage,
	}
}

func allAbove(records []models.AlarmRecord, limit float64) bool {
	for _, r := range records {
		if r.DeviationPercent <= limit {
			return false
		}
	}
	return true
}

func joinValues(records []models.AlarmRecord) string {
	vals := make([]string, len(records))
	for i, r := range records {
		vals[i] = strconv.FormatFloat(r.Actual, 'f', 2, 64)
	}
	return strings.Join(vals, ", ")
}
