package machine

import (
	"sort"
	"time"

	"filling_line/internal/models"
)

// Delays of the deferred transitions.
const (
	StartDelay         = 3 * time.Second
	StopDelay          = 3 * time.Second
	CIPDuration        = 60 * time.Second
	SIPDuration        = 90 * time.Second
	ChangeoverDuration = 30 * time.Second
)

// slot is a piece of state that deferred transitions may write.
// Every direct write claims the slot, which invalidates older pending writes.
type slot int

const (
	slotStatus slot = iota
	slotCleaning
	slotArticle
	slotFillVolume
	slotTemperature
	slotCO2

	slotCount
)

type deferredWrite struct {
	slot  slot
	gen   uint64
	apply func(st *store)
}

type deferred struct {
	due    time.Time
	seq    uint64
	label  string
	writes []deferredWrite
}

// claimLocked marks s as written now and returns the new generation.
func (m *Machine) claimLocked(s slot) uint64 {
	m.gens[s]++
	return m.gens[s]
}

func (m *Machine) setStatusLocked(status models.MachineStatus) uint64 {
	gen := m.claimLocked(slotStatus)
	m.st.status = status
	return gen
}

func (m *Machine) setCleaningLocked(c models.CleaningStatus) uint64 {
	gen := m.claimLocked(slotCleaning)
	m.st.cleaning = c
	return gen
}

// writeStatus returns a deferred write that sets the status unless the
// status was written again after gen was claimed.
func writeStatus(gen uint64, status models.MachineStatus) deferredWrite {
	return deferredWrite{slot: slotStatus, gen: gen, apply: func(st *store) { st.status = status }}
}

func writeCleaning(gen uint64, c models.CleaningStatus) deferredWrite {
	return deferredWrite{slot: slotCleaning, gen: gen, apply: func(st *store) { st.cleaning = c }}
}

// writeTarget returns a deferred write of one parameter target guarded by s.
func writeTarget(s slot, gen uint64, id models.ParameterID, v float64) deferredWrite {
	return deferredWrite{slot: s, gen: gen, apply: func(st *store) { st.params[id].Target = v }}
}

func (m *Machine) scheduleLocked(delay time.Duration, label string, writes ...deferredWrite) {
	m.seq++
	m.pending = append(m.pending, deferred{
		due:    m.clock.Now().Add(delay),
		seq:    m.seq,
		label:  label,
		writes: writes,
	})
}

// applyDueLocked fires every pending transition whose deadline has passed,
// oldest deadline first.
func (m *Machine) applyDueLocked(now time.Time) {
	if len(m.pending) == 0 {
		return
	}

	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].due.Equal(m.pending[j].due) {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].due.Before(m.pending[j].due)
	})

	n := 0
	for _, d := range m.pending {
		if d.due.After(now) {
			break
		}
		for _, w := range d.writes {
			if m.gens[w.slot] == w.gen {
				w.apply(&m.st)
			}
		}
		n++
	}
	m.pending = append(m.pending[:0], m.pending[n:]...)
}

// Pending returns the labels of the transitions that have not fired yet.
func (m *Machine) Pending() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.pending))
	for _, d := range m.pending {
		out = append(out, d.label)
	}
	return out
}

// StartMachine moves a stopped machine to Starting and to Running after StartDelay.
func (m *Machine) StartMachine() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyDueLocked(m.clock.Now())

	if m.st.status != models.StatusStopped {
		return
	}
	gen := m.setStatusLocked(models.StatusStarting)
	m.scheduleLocked(StartDelay, "start", writeStatus(gen, models.StatusRunning))
}

// StopMachine moves a running, faulted or maintained machine to Stopping
// and to Stopped after StopDelay.
func (m *Machine) StopMachine() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyDueLocked(m.clock.Now())

	switch m.st.status {
	case models.StatusRunning, models.StatusError, models.StatusMaintenance:
	default:
		return
	}
	gen := m.setStatusLocked(models.StatusStopping)
	m.scheduleLocked(StopDelay, "stop", writeStatus(gen, models.StatusStopped))
}

// EnterMaintenanceMode switches to Maintenance immediately from any state.
func (m *Machine) EnterMaintenanceMode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyDueLocked(m.clock.Now())

	m.setStatusLocked(models.StatusMaintenance)
}

// EmergencyStop forces Error immediately and raises the emergency alarm.
func (m *Machine) EmergencyStop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyDueLocked(m.clock.Now())

	m.setStatusLocked(models.StatusError)
	for _, a := range m.active {
		if a.Class == models.AlarmEmergency {
			return
		}
	}
	m.active = append(m.active, emergencyAlarm())
}

// StartCIPCycle starts clean-in-place on a stopped or maintained machine.
func (m *Machine) StartCIPCycle() {
	m.startCleaning(models.CleaningCIP, CIPDuration, "cip")
}

// StartSIPCycle starts sterilize-in-place on a stopped or maintained machine.
func (m *Machine) StartSIPCycle() {
	m.startCleaning(models.CleaningSIP, SIPDuration, "sip")
}

func (m *Machine) startCleaning(c models.CleaningStatus, d time.Duration, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyDueLocked(m.clock.Now())

	if m.st.status != models.StatusStopped && m.st.status != models.StatusMaintenance {
		return
	}
	gen := m.setCleaningLocked(c)
	m.scheduleLocked(d, label, writeCleaning(gen, models.CleaningNormal))
}

// ProductChange carries the new article and setpoints for ChangeProduct.
type ProductChange struct {
	Article            string
	FillVolume         float64
	ProductTemperature float64
	CO2Pressure        float64
}

// ChangeProduct puts the line into sanitizing maintenance and applies the
// new product after ChangeoverDuration, leaving the machine Stopped.
func (m *Machine) ChangeProduct(p ProductChange) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyDueLocked(m.clock.Now())

	statusGen := m.setStatusLocked(models.StatusMaintenance)
	cleaningGen := m.setCleaningLocked(models.CleaningSanitizing)
	articleGen := m.claimLocked(slotArticle)
	fillGen := m.claimLocked(slotFillVolume)
	tempGen := m.claimLocked(slotTemperature)
	co2Gen := m.claimLocked(slotCO2)

	m.scheduleLocked(ChangeoverDuration, "changeover",
		deferredWrite{slot: slotArticle, gen: articleGen, apply: func(st *store) { st.order.Article = p.Article }},
		writeTarget(slotFillVolume, fillGen, models.FillVolume, p.FillVolume),
		writeTarget(slotTemperature, tempGen, models.ProductTemperature, p.ProductTemperature),
		writeTarget(slotCO2, co2Gen, models.CO2Pressure, p.CO2Pressure),
		writeCleaning(cleaningGen, models.CleaningNormal),
		writeStatus(statusGen, models.StatusStopped),
	)
}
