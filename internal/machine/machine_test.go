package machine

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"filling_line/internal/models"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

// fixedRandom always returns the same draw; 0.5 puts every actual on its target.
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

func newTestMachine(t *testing.T, opts ...Option) (*Machine, *testclock.Clock) {
	t.Helper()
	clk := testclock.NewClock(t0)
	opts = append([]Option{WithClock(clk), WithRandom(fixedRandom(0.5))}, opts...)
	return New(opts...), clk
}

func running(m *Machine) {
	m.mu.Lock()
	m.st.status = models.StatusRunning
	m.mu.Unlock()
}

func hasAlarm(s models.MachineState, substr string) bool {
	for _, a := range s.Alarms {
		if strings.Contains(a.Message, substr) {
			return true
		}
	}
	return false
}

func requireTotals(t *testing.T, s models.MachineState) {
	t.Helper()
	c := s.Counters
	require.Equal(t, c.GoodBottles+c.BadBottlesVolume+c.BadBottlesWeight+c.BadBottlesCap+c.BadBottlesOther, c.TotalBottles())
	require.Equal(t, s.Order.GoodBottles+s.Order.BadBottles, s.Order.TotalBottles())
}

func TestNew_StartsStopped(t *testing.T) {
	m, _ := newTestMachine(t)
	s := m.Snapshot()

	require.Equal(t, models.StatusStopped, s.Status)
	require.Equal(t, models.CleaningNormal, s.Cleaning)
	require.Equal(t, "ART-JUICE-APPLE-1L", s.Order.Article)
	require.Equal(t, 1000.0, s.Params[models.FillVolume].Target)
	require.Empty(t, s.Alarms)
}

func TestWithIdentity_KeepsDefaultsForEmptyFields(t *testing.T) {
	m, _ := newTestMachine(t, WithIdentity(models.Identity{Name: "Filler 7", ProductionLine: "Line 7"}))
	id := m.Snapshot().Identity

	require.Equal(t, "Filler 7", id.Name)
	require.Equal(t, "Line 7", id.ProductionLine)
	require.Equal(t, "FFE2000-2023-002", id.SerialNumber)
	require.Equal(t, "Dortmund Beverage Center", id.Plant)
}

func TestAdvance_NoChangeUnlessRunning(t *testing.T) {
	for _, status := range []models.MachineStatus{
		models.StatusStopped,
		models.StatusStarting,
		models.StatusStopping,
		models.StatusError,
		models.StatusMaintenance,
	} {
		t.Run(string(status), func(t *testing.T) {
			m, _ := newTestMachine(t, WithRandom(rand.New(rand.NewSource(7))))
			m.mu.Lock()
			m.st.status = status
			m.mu.Unlock()

			before := m.Snapshot()
			for i := 0; i < 25; i++ {
				m.Advance()
			}
			after := m.Snapshot()

			require.Equal(t, before.Params, after.Params)
			require.Equal(t, before.TankLevel, after.TankLevel)
			require.Equal(t, before.Station, after.Station)
			require.Equal(t, before.Counters, after.Counters)
			require.Equal(t, before.Alarms, after.Alarms)
		})
	}
}

func TestAdvance_FillVolumeStaysWithinAmplitude(t *testing.T) {
	m, _ := newTestMachine(t, WithRandom(rand.New(rand.NewSource(42))))
	running(m)

	for i := 0; i < 1000; i++ {
		s := m.Tick()
		fill := s.Params[models.FillVolume].Actual
		require.GreaterOrEqual(t, fill, 998.0)
		require.LessOrEqual(t, fill, 1002.0)
		require.False(t, hasAlarm(s, "Fill deviation"), "spurious fill alarm at tick %d: %.3f", i, fill)
		requireTotals(t, s)
	}
}

func TestAdvance_AllParametersWithinHalfAmplitude(t *testing.T) {
	m, _ := newTestMachine(t, WithRandom(rand.New(rand.NewSource(3))))
	running(m)

	for i := 0; i < 200; i++ {
		s := m.Tick()
		for id := models.ParameterID(0); id < models.ParameterCount; id++ {
			p := s.Params[id]
			half := Amplitude(id) / 2
			require.InDelta(t, p.Target, p.Actual, half+1e-12, id.String())
		}
	}
}

func TestAdvance_StationCycles(t *testing.T) {
	m, _ := newTestMachine(t)
	running(m)

	var got []int
	for i := 0; i < StationCount+2; i++ {
		got = append(got, m.Tick().Station)
	}
	require.Equal(t, 2, got[0])
	require.Equal(t, StationCount, got[StationCount-2])
	require.Equal(t, 1, got[StationCount-1])
	require.Equal(t, 2, got[StationCount])
}

func TestAdvance_TankDrainsToFloor(t *testing.T) {
	m, _ := newTestMachine(t)
	running(m)
	m.mu.Lock()
	m.st.tankLevel = DefaultTankFloor + 0.005
	m.mu.Unlock()

	s := m.Tick()
	require.Equal(t, DefaultTankFloor, s.TankLevel)
	s = m.Tick()
	require.Equal(t, DefaultTankFloor, s.TankLevel)
}

func TestAdvance_TankFloorOption(t *testing.T) {
	m, _ := newTestMachine(t, WithTankFloor(15))
	running(m)
	m.mu.Lock()
	m.st.tankLevel = 15.001
	m.mu.Unlock()

	s := m.Tick()
	require.Equal(t, 15.0, s.TankLevel)
	require.False(t, hasAlarm(s, "Tank level"))
}

func TestTankLowAlarm_DoesNotStopMachine(t *testing.T) {
	m, _ := newTestMachine(t)
	running(m)
	m.mu.Lock()
	m.st.tankLevel = 15.02
	m.mu.Unlock()

	var s models.MachineState
	for i := 0; i < 3; i++ {
		s = m.Tick()
	}
	require.Less(t, s.TankLevel, TankLowPercent)
	require.True(t, hasAlarm(s, "Tank level"))
	require.Equal(t, models.StatusRunning, s.Status)

	s = m.Tick()
	require.True(t, hasAlarm(s, "Tank level"), "alarm must re-fire while the condition holds")
	require.Equal(t, models.StatusRunning, s.Status)
}

func TestStartMachine_DeferredToRunning(t *testing.T) {
	m, clk := newTestMachine(t)

	m.StartMachine()
	require.Equal(t, models.StatusStarting, m.Snapshot().Status)

	clk.Advance(StartDelay - time.Millisecond)
	require.Equal(t, models.StatusStarting, m.Snapshot().Status)

	clk.Advance(time.Millisecond)
	require.Equal(t, models.StatusRunning, m.Snapshot().Status)
	require.Empty(t, m.Pending())
}

func TestStartMachine_TwiceSchedulesOnce(t *testing.T) {
	m, clk := newTestMachine(t)

	m.StartMachine()
	m.StartMachine()
	require.Equal(t, []string{"start"}, m.Pending())

	clk.Advance(StartDelay)
	require.Equal(t, models.StatusRunning, m.Tick().Status)
}

func TestStartMachine_NoopOutsideStopped(t *testing.T) {
	m, _ := newTestMachine(t)
	m.EnterMaintenanceMode()

	m.StartMachine()
	require.Equal(t, models.StatusMaintenance, m.Snapshot().Status)
	require.Empty(t, m.Pending())
}

func TestStopMachine(t *testing.T) {
	for _, from := range []models.MachineStatus{models.StatusRunning, models.StatusError, models.StatusMaintenance} {
		t.Run(string(from), func(t *testing.T) {
			m, clk := newTestMachine(t)
			m.mu.Lock()
			m.st.status = from
			m.mu.Unlock()

			m.StopMachine()
			require.Equal(t, models.StatusStopping, m.Snapshot().Status)

			clk.Advance(StopDelay)
			require.Equal(t, models.StatusStopped, m.Snapshot().Status)
		})
	}
}

func TestStopMachine_NoopWhenStopped(t *testing.T) {
	m, _ := newTestMachine(t)
	m.StopMachine()
	require.Equal(t, models.StatusStopped, m.Snapshot().Status)
	require.Empty(t, m.Pending())
}

func TestEnterMaintenanceMode_FromAnyState(t *testing.T) {
	m, _ := newTestMachine(t)
	running(m)
	m.EnterMaintenanceMode()
	require.Equal(t, models.StatusMaintenance, m.Snapshot().Status)

	m.EmergencyStop()
	m.EnterMaintenanceMode()
	require.Equal(t, models.StatusMaintenance, m.Snapshot().Status)
}

func TestEmergencyStop_RecoversThroughStopAndStart(t *testing.T) {
	m, clk := newTestMachine(t, WithRandom(rand.New(rand.NewSource(11))))
	running(m)
	m.Tick()

	m.EmergencyStop()
	s := m.Snapshot()
	require.Equal(t, models.StatusError, s.Status)
	require.True(t, hasAlarm(s, emergencyStopMessage))

	for i := 0; i < 5; i++ {
		m.Advance()
	}
	after := m.Snapshot()
	require.Equal(t, s.Params, after.Params)
	require.Equal(t, s.TankLevel, after.TankLevel)
	require.True(t, hasAlarm(after, emergencyStopMessage))

	m.StartMachine()
	require.Equal(t, models.StatusError, m.Snapshot().Status)

	m.StopMachine()
	require.Equal(t, models.StatusStopping, m.Snapshot().Status)
	clk.Advance(StopDelay)
	require.Equal(t, models.StatusStopped, m.Tick().Status)

	m.StartMachine()
	clk.Advance(StartDelay)
	s = m.Tick()
	require.Equal(t, models.StatusRunning, s.Status)
	require.NotEqual(t, after.TankLevel, s.TankLevel)
	require.False(t, hasAlarm(s, emergencyStopMessage))
}

func TestEmergencyStop_WinsOverPendingStart(t *testing.T) {
	m, clk := newTestMachine(t)

	m.StartMachine()
	m.EmergencyStop()
	clk.Advance(StartDelay)

	require.Equal(t, models.StatusError, m.Tick().Status)
}

func TestEmergencyStop_AlarmNotDuplicated(t *testing.T) {
	m, _ := newTestMachine(t)
	m.EmergencyStop()
	m.EmergencyStop()
	require.Len(t, m.Snapshot().Alarms, 1)
}

func TestCleaningCycles(t *testing.T) {
	cases := []struct {
		name     string
		start    func(*Machine)
		status   models.CleaningStatus
		duration time.Duration
	}{
		{"cip", (*Machine).StartCIPCycle, models.CleaningCIP, CIPDuration},
		{"sip", (*Machine).StartSIPCycle, models.CleaningSIP, SIPDuration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, clk := newTestMachine(t)

			tc.start(m)
			require.Equal(t, tc.status, m.Snapshot().Cleaning)

			clk.Advance(tc.duration - time.Second)
			require.Equal(t, tc.status, m.Snapshot().Cleaning)

			clk.Advance(time.Second)
			require.Equal(t, models.CleaningNormal, m.Snapshot().Cleaning)
		})
	}
}

func TestCleaningCycles_RequireStoppedOrMaintenance(t *testing.T) {
	m, _ := newTestMachine(t)
	running(m)

	m.StartCIPCycle()
	m.StartSIPCycle()
	require.Equal(t, models.CleaningNormal, m.Snapshot().Cleaning)
	require.Empty(t, m.Pending())

	m.EnterMaintenanceMode()
	m.StartSIPCycle()
	require.Equal(t, models.CleaningSIP, m.Snapshot().Cleaning)
}

func TestChangeProduct_AppliesAfterChangeover(t *testing.T) {
	m, clk := newTestMachine(t)
	running(m)

	m.ChangeProduct(ProductChange{Article: "ART-SODA-LEMON-0.5L", FillVolume: 500, ProductTemperature: 4, CO2Pressure: 5.2})
	s := m.Snapshot()
	require.Equal(t, models.StatusMaintenance, s.Status)
	require.Equal(t, models.CleaningSanitizing, s.Cleaning)

	for i := 0; i < 10; i++ {
		clk.Advance(2 * time.Second)
		s = m.Tick()
		require.Equal(t, "ART-JUICE-APPLE-1L", s.Order.Article)
		require.Equal(t, 1000.0, s.Params[models.FillVolume].Target)
	}

	clk.Advance(ChangeoverDuration)
	s = m.Tick()
	require.Equal(t, "ART-SODA-LEMON-0.5L", s.Order.Article)
	require.Equal(t, 500.0, s.Params[models.FillVolume].Target)
	require.Equal(t, 4.0, s.Params[models.ProductTemperature].Target)
	require.Equal(t, 5.2, s.Params[models.CO2Pressure].Target)
	require.Equal(t, 450.0, s.Params[models.LineSpeed].Target)
	require.Equal(t, models.CleaningNormal, s.Cleaning)
	require.Equal(t, models.StatusStopped, s.Status)
}

func TestChangeProduct_LaterOrderWins(t *testing.T) {
	m, clk := newTestMachine(t)

	m.ChangeProduct(ProductChange{Article: "ART-WATER-STILL-1L", FillVolume: 990, ProductTemperature: 8, CO2Pressure: 0.5})
	clk.Advance(10 * time.Second)
	m.LoadProductionOrder(Order{
		Number: "PO-2", Article: "ART-TEA-PEACH-1L", Quantity: 10,
		FillVolume: 1000, LineSpeed: 400, ProductTemperature: 7, CO2Pressure: 1, CapTorque: 20, CycleTime: 3,
	})
	clk.Advance(ChangeoverDuration)

	s := m.Snapshot()
	require.Equal(t, "ART-TEA-PEACH-1L", s.Order.Article)
	require.Equal(t, 7.0, s.Params[models.ProductTemperature].Target)
	require.Equal(t, models.StatusStopped, s.Status)
	require.Equal(t, models.CleaningNormal, s.Cleaning)
}

func TestChangeProduct_FillAdjustOverridesOnlyFill(t *testing.T) {
	m, clk := newTestMachine(t)

	m.ChangeProduct(ProductChange{Article: "ART-SODA-LEMON-0.5L", FillVolume: 500, ProductTemperature: 4, CO2Pressure: 5.2})
	clk.Advance(5 * time.Second)
	require.True(t, m.AdjustFillVolume(1010))
	clk.Advance(ChangeoverDuration)

	s := m.Snapshot()
	require.Equal(t, "ART-SODA-LEMON-0.5L", s.Order.Article)
	require.Equal(t, 1010.0, s.Params[models.FillVolume].Target)
	require.Equal(t, 4.0, s.Params[models.ProductTemperature].Target)
	require.Equal(t, 5.2, s.Params[models.CO2Pressure].Target)
	require.Equal(t, models.StatusStopped, s.Status)
	require.Equal(t, models.CleaningNormal, s.Cleaning)
}

func TestLoadProductionOrder_ProgressAndReset(t *testing.T) {
	m, _ := newTestMachine(t)
	running(m)

	m.LoadProductionOrder(Order{
		Number: "PO-2025-0001", Article: "ART-JUICE-ORANGE-1L", Quantity: 100,
		FillVolume: 1000, LineSpeed: 450, ProductTemperature: 6.5, CO2Pressure: 3.8, CapTorque: 22, CycleTime: 2.67,
	})
	var s models.MachineState
	for i := 0; i < 50; i++ {
		s = m.Tick()
	}
	require.Equal(t, uint32(50), s.Order.GoodBottles)
	require.Equal(t, 50.0, s.Order.Progress())
	requireTotals(t, s)

	m.LoadProductionOrder(Order{
		Number: "PO-2025-0002", Article: "ART-JUICE-GRAPE-1L", Quantity: 200,
		FillVolume: 1000, LineSpeed: 450, ProductTemperature: 6.5, CO2Pressure: 3.8, CapTorque: 22, CycleTime: 2.67,
	})
	s = m.Snapshot()
	require.Equal(t, "PO-2025-0002", s.Order.Number)
	require.Zero(t, s.Order.GoodBottles)
	require.Zero(t, s.Order.BadBottles)
	require.Equal(t, 0.0, s.Order.Progress())
	require.Equal(t, uint32(50), s.Counters.GoodBottles, "global counters survive an order change")
}

func TestAdjustFillVolume_Band(t *testing.T) {
	m, _ := newTestMachine(t)
	target := m.Snapshot().Params[models.FillVolume].Target

	require.False(t, m.AdjustFillVolume(target*1.06))
	require.Equal(t, target, m.Snapshot().Params[models.FillVolume].Target)

	require.True(t, m.AdjustFillVolume(target*1.05))
	require.Equal(t, target*1.05, m.Snapshot().Params[models.FillVolume].Target)
}

func TestAdjustFillVolume_BelowBand(t *testing.T) {
	m, _ := newTestMachine(t)

	require.False(t, m.AdjustFillVolume(940))
	require.True(t, m.AdjustFillVolume(950))
	require.Equal(t, 950.0, m.Snapshot().Params[models.FillVolume].Target)
}

func TestResetCounters_KeepsOrderCounters(t *testing.T) {
	m, _ := newTestMachine(t)
	running(m)
	for i := 0; i < 7; i++ {
		m.Tick()
	}

	m.ResetCounters()
	s := m.Snapshot()
	require.Zero(t, s.Counters.TotalBottles())
	require.Equal(t, uint32(7), s.Order.GoodBottles)
	requireTotals(t, s)
}

func TestInspectBottle_Classification(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *models.Parameters)
		check  func(t *testing.T, c models.Counters)
	}{
		{"good", func(p *models.Parameters) {}, func(t *testing.T, c models.Counters) {
			require.Equal(t, uint32(1), c.GoodBottles)
		}},
		{"volume", func(p *models.Parameters) { p[models.FillVolume].Actual = 1015 }, func(t *testing.T, c models.Counters) {
			require.Equal(t, uint32(1), c.BadBottlesVolume)
		}},
		{"weight", func(p *models.Parameters) { p[models.FillVolume].Actual = 1007 }, func(t *testing.T, c models.Counters) {
			require.Equal(t, uint32(1), c.BadBottlesWeight)
		}},
		{"cap", func(p *models.Parameters) { p[models.CapTorque].Actual = 25 }, func(t *testing.T, c models.Counters) {
			require.Equal(t, uint32(1), c.BadBottlesCap)
		}},
		{"other", func(p *models.Parameters) { p[models.CO2Pressure].Actual = 4.2 }, func(t *testing.T, c models.Counters) {
			require.Equal(t, uint32(1), c.BadBottlesOther)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := newTestMachine(t)
			m.mu.Lock()
			for i := range m.st.params {
				m.st.params[i].Actual = m.st.params[i].Target
			}
			tc.mutate(&m.st.params)
			m.inspectBottleLocked()
			m.mu.Unlock()

			s := m.Snapshot()
			tc.check(t, s.Counters)
			require.Equal(t, uint32(1), s.Counters.TotalBottles())
			require.Equal(t, uint32(1), s.Order.TotalBottles())
		})
	}
}

func TestGenerateLotNumber(t *testing.T) {
	m, _ := newTestMachine(t)

	lot := m.GenerateLotNumber()
	require.Equal(t, "LOT-2025-JUICE-031409", lot)

	s := m.Snapshot()
	require.Equal(t, lot, s.LotNumber)
	require.Equal(t, time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), s.ExpirationDate)
}

func TestGenerateLotNumber_FallsBackToUNK(t *testing.T) {
	m, _ := newTestMachine(t)
	m.LoadProductionOrder(Order{Number: "PO-X", Article: "NODASHES", Quantity: 1,
		FillVolume: 1000, LineSpeed: 450, ProductTemperature: 6.5, CO2Pressure: 3.8, CapTorque: 22, CycleTime: 2.67})

	require.Equal(t, "LOT-2025-UNK-031409", m.GenerateLotNumber())
}

func TestLotToken(t *testing.T) {
	require.Equal(t, "JUICE", LotToken("ART-JUICE-APPLE-1L"))
	require.Equal(t, "SODA", LotToken("ART-SODA"))
	require.Equal(t, "UNK", LotToken("NODASHES"))
	require.Equal(t, "UNK", LotToken(""))
	require.Equal(t, "UNK", LotToken("ART-"))
}

func TestRefillTank(t *testing.T) {
	m, _ := newTestMachine(t)
	m.RefillTank()
	require.Equal(t, TankFull, m.Snapshot().TankLevel)
}

func TestRestore_KeepsStatusStopped(t *testing.T) {
	m, _ := newTestMachine(t)
	saved := m.Snapshot()
	saved.Status = models.StatusRunning
	saved.Order.Number = "PO-RESTORED"
	saved.Counters.GoodBottles = 42
	saved.TankLevel = 55.5
	saved.Params[models.CapTorque].Target = 0

	m.Restore(saved)
	s := m.Snapshot()
	require.Equal(t, models.StatusStopped, s.Status)
	require.Equal(t, "PO-RESTORED", s.Order.Number)
	require.Equal(t, uint32(42), s.Counters.GoodBottles)
	require.Equal(t, 55.5, s.TankLevel)
	require.Equal(t, 22.0, s.Params[models.CapTorque].Target, "zero targets are not restored")
}
