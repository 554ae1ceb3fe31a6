// Package machine implements the simulated beverage filling machine: the
// parameter store, the tick-driven simulation, the lifecycle state machine,
// the alarm engine and the command surface.
//
// A Machine owns one mutex. Ticks, commands, deferred transitions and
// snapshot reads all run under it, so callers never observe a partially
// applied update.
package machine

import (
	"math/rand"
	"sync"
	"time"

	"filling_line/internal/models"

	"github.com/juju/clock"
)

// RandomSource supplies the perturbation used by the simulation.
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

const (
	defaultBottlesPerTick = 1
	defaultShelfLifeDays  = 365
)

// Machine is the single simulated filling machine.
type Machine struct {
	mu sync.Mutex

	clock          clock.Clock
	rng            RandomSource
	tankFloor      float64
	bottlesPerTick int
	shelfLifeDays  int

	st      store
	alarms  *AlarmEngine
	active  []models.Alarm
	pending []deferred
	seq     uint64
	gens    [slotCount]uint64
}

// Option customizes Machine creation.
type Option func(*Machine)

// WithClock overrides the wall clock used for deferred transitions and timestamps.
func WithClock(c clock.Clock) Option {
	return func(m *Machine) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithRandom overrides the random source used by Advance.
func WithRandom(r RandomSource) Option {
	return func(m *Machine) {
		if r != nil {
			m.rng = r
		}
	}
}

// WithTankFloor sets the lowest level the simulated tank drains to.
func WithTankFloor(floor float64) Option {
	return func(m *Machine) {
		if floor >= 0 && floor < TankFull {
			m.tankFloor = floor
		}
	}
}

// WithBottlesPerTick sets how many bottles are inspected per running tick.
func WithBottlesPerTick(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.bottlesPerTick = n
		}
	}
}

// WithShelfLife sets the number of days added to the lot date to get the expiration date.
func WithShelfLife(days int) Option {
	return func(m *Machine) {
		if days > 0 {
			m.shelfLifeDays = days
		}
	}
}

// WithIdentity overrides the default machine identification. Empty fields
// keep their default.
func WithIdentity(id models.Identity) Option {
	return func(m *Machine) {
		set := func(dst *string, src string) {
			if src != "" {
				*dst = src
			}
		}
		cur := &m.st.identity
		set(&cur.Name, id.Name)
		set(&cur.SerialNumber, id.SerialNumber)
		set(&cur.Plant, id.Plant)
		set(&cur.ProductionSegment, id.ProductionSegment)
		set(&cur.ProductionLine, id.ProductionLine)
	}
}

// New creates a stopped machine loaded with the default order.
func New(opts ...Option) *Machine {
	m := &Machine{
		clock:          clock.WallClock,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		tankFloor:      DefaultTankFloor,
		bottlesPerTick: defaultBottlesPerTick,
		shelfLifeDays:  defaultShelfLifeDays,
		st:             defaultStore(),
		alarms:         NewAlarmEngine(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Tick is one period of the host timer: due deferred transitions are applied,
// the simulation advances, and the resulting state is returned. The snapshot
// is taken inside the same critical section as the update.
func (m *Machine) Tick() models.MachineState {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.applyDueLocked(now)
	m.advanceLocked(now)
	return m.snapshotLocked(now)
}

// Snapshot returns a detached copy of the current state.
func (m *Machine) Snapshot() models.MachineState {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.applyDueLocked(now)
	return m.snapshotLocked(now)
}

// Restore loads persisted order, lot, targets, counters and tank level.
// The machine status is left untouched so a restarted line always comes up stopped.
func (m *Machine) Restore(s models.MachineState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.st.order = s.Order
	if s.LotNumber != "" {
		m.st.lot = s.LotNumber
	}
	if !s.ExpirationDate.IsZero() {
		m.st.expiration = s.ExpirationDate
	}
	for i := range s.Params {
		if s.Params[i].Target > 0 {
			m.st.params[i].Target = s.Params[i].Target
			m.st.params[i].Actual = s.Params[i].Actual
		}
	}
	m.st.counters = s.Counters
	if s.TankLevel > 0 {
		m.st.tankLevel = clamp(s.TankLevel, m.tankFloor, TankFull)
	}
}

func (m *Machine) snapshotLocked(now time.Time) models.MachineState {
	alarms := make([]models.Alarm, len(m.active))
	copy(alarms, m.active)
	return models.MachineState{
		Identity:           m.st.identity,
		Order:              m.st.order,
		LotNumber:          m.st.lot,
		ExpirationDate:     m.st.expiration,
		Params:             m.st.params,
		Status:             m.st.status,
		Cleaning:           m.st.cleaning,
		TankLevel:          m.st.tankLevel,
		Station:            m.st.station,
		QualityCheckWeight: m.st.qualityWeight,
		QualityCheckLevel:  m.st.qualityLevel,
		Counters:           m.st.counters,
		Alarms:             alarms,
		UpdatedAt:          now.UTC(),
	}
}
