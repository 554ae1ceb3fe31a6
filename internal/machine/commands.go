package machine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"filling_line/internal/models"
)

// FillAdjustBand is the largest relative change AdjustFillVolume accepts.
const FillAdjustBand = 0.05

const (
	lotTokenFallback = "UNK"
	bandTolerance    = 1e-9
)

// Order carries everything LoadProductionOrder writes.
type Order struct {
	Number             string
	Article            string
	Quantity           uint32
	FillVolume         float64
	LineSpeed          float64
	ProductTemperature float64
	CO2Pressure        float64
	CapTorque          float64
	CycleTime          float64
}

// LoadProductionOrder replaces the order and all targets and resets the
// order counters.
func (m *Machine) LoadProductionOrder(o Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyDueLocked(m.clock.Now())

	for _, sl := range []slot{slotArticle, slotFillVolume, slotTemperature, slotCO2} {
		m.claimLocked(sl)
	}
	m.st.order = models.ProductionOrder{
		Number:   o.Number,
		Article:  o.Article,
		Quantity: o.Quantity,
	}
	p := &m.st.params
	p[models.FillVolume].Target = o.FillVolume
	p[models.LineSpeed].Target = o.LineSpeed
	p[models.ProductTemperature].Target = o.ProductTemperature
	p[models.CO2Pressure].Target = o.CO2Pressure
	p[models.CapTorque].Target = o.CapTorque
	p[models.CycleTime].Target = o.CycleTime
}

// AdjustFillVolume sets a new fill volume target if it is within
// FillAdjustBand of the current one. It reports whether the value was taken.
func (m *Machine) AdjustFillVolume(volume float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyDueLocked(m.clock.Now())

	current := m.st.params[models.FillVolume].Target
	limit := math.Abs(current) * FillAdjustBand
	if math.IsNaN(volume) || math.Abs(volume-current) > limit+limit*bandTolerance {
		return false
	}
	m.claimLocked(slotFillVolume)
	m.st.params[models.FillVolume].Target = volume
	return true
}

// ResetCounters zeroes the global counters. Order counters are kept.
func (m *Machine) ResetCounters() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.st.counters = models.Counters{}
}

// RefillTank brings the product tank back to full.
func (m *Machine) RefillTank() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.st.tankLevel = TankFull
}

// GenerateLotNumber derives a lot number from the clock and the article,
// stores it as the current lot and returns it.
func (m *Machine) GenerateLotNumber() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	lot := fmt.Sprintf("LOT-%04d-%s-%02d%02d%02d",
		now.Year(), LotToken(m.st.order.Article), int(now.Month()), now.Day(), now.Hour())

	m.st.lot = lot
	y, mo, d := now.Date()
	m.st.expiration = time.Date(y, mo, d+m.shelfLifeDays, 0, 0, 0, 0, now.Location())
	return lot
}

// LotToken returns the second dash-separated segment of an article code,
// or "UNK" when there is none.
func LotToken(article string) string {
	parts := strings.Split(article, "-")
	if len(parts) < 2 || parts[1] == "" {
		return lotTokenFallback
	}
	return parts[1]
}
