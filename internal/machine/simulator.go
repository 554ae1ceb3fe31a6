package machine

import (
	"math"
	"time"

	"filling_line/internal/models"
)

// StationCount is the number of filling valves the current-station indicator cycles through.
const StationCount = 16

// TankDecrement is the tank level drained per running tick, in percent.
const TankDecrement = 0.01

// Peak-to-peak perturbation applied around each target on every tick.
var amplitudes = [models.ParameterCount]float64{
	models.FillVolume:         4.0,
	models.LineSpeed:          10.0,
	models.ProductTemperature: 1.0,
	models.CO2Pressure:        0.1,
	models.CapTorque:          2.0,
	models.CycleTime:          0.2,
}

// Bottle inspection limits. A bottle is rejected for the first check it fails.
const (
	weightDeviationPercent = 0.5
)

// Amplitude returns the peak-to-peak perturbation of p.
func Amplitude(p models.ParameterID) float64 {
	if p < 0 || p >= models.ParameterCount {
		return 0
	}
	return amplitudes[p]
}

// Advance runs one simulation step. It does nothing unless the machine is Running.
func (m *Machine) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceLocked(m.clock.Now())
}

func (m *Machine) advanceLocked(now time.Time) {
	if m.st.status != models.StatusRunning {
		return
	}

	m.st.tickCount++

	for i := range m.st.params {
		p := &m.st.params[i]
		p.Actual = p.Target + (m.rng.Float64()-0.5)*amplitudes[i]
	}

	m.st.tankLevel = math.Max(m.tankFloor, m.st.tankLevel-TankDecrement)
	m.st.station = int(m.st.tickCount%StationCount) + 1

	for i := 0; i < m.bottlesPerTick; i++ {
		m.inspectBottleLocked()
	}

	m.active = m.alarms.Evaluate(AlarmInput{
		Params:    m.st.params,
		TankLevel: m.st.tankLevel,
		At:        now,
	})
}

// inspectBottleLocked classifies the bottle filled at the current parameters
// and bumps the global and order counters.
func (m *Machine) inspectBottleLocked() {
	params := m.st.params
	fillDev := params[models.FillVolume].DeviationPercent()

	m.st.qualityLevel = models.QualityPass
	m.st.qualityWeight = models.QualityPass

	c := &m.st.counters
	good := false
	switch {
	case fillDev > FillDeviationPercent:
		m.st.qualityLevel = models.QualityFail
		c.BadBottlesVolume++
	case fillDev > weightDeviationPercent:
		m.st.qualityWeight = models.QualityFail
		c.BadBottlesWeight++
	case params[models.CapTorque].DeviationPercent() > CapTorqueDeviationPerc:
		c.BadBottlesCap++
	case math.Abs(params[models.ProductTemperature].Deviation()) > TemperatureDeviationC,
		math.Abs(params[models.CO2Pressure].Deviation()) > CO2DeviationBar:
		c.BadBottlesOther++
	default:
		c.GoodBottles++
		good = true
	}

	if good {
		m.st.order.GoodBottles++
	} else {
		m.st.order.BadBottles++
	}
}
