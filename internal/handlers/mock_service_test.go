package handlers

import (
	"context"
	"sync"
	"time"

	"filling_line"
	"filling_line/internal/models"
	"filling_line/internal/service"
	"filling_line/internal/tags"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockControl struct {
	result  tags.Result
	methods []tags.Method

	calls      int
	lastMethod string
	lastArgs   []any
}

func (m *mockControl) Call(ctx context.Context, method string, args []any) tags.Result {
	m.calls++
	m.lastMethod = method
	m.lastArgs = args
	return m.result
}

func (m *mockControl) Methods() []tags.Method {
	return m.methods
}

// mockMonitoring serves frames in order and repeats the last one.
type mockMonitoring struct {
	mu     sync.Mutex
	frames []tags.Frame
	err    error
	tagErr error
	next   int
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.MachineState, error) {
	return models.MachineState{}, m.err
}

func (m *mockMonitoring) GetTags(ctx context.Context) (tags.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return tags.Frame{}, m.err
	}
	if len(m.frames) == 0 {
		return tags.Frame{}, nil
	}
	f := m.frames[m.next]
	if m.next < len(m.frames)-1 {
		m.next++
	}
	return f, nil
}

func (m *mockMonitoring) GetTag(ctx context.Context, name string) (tags.Value, error) {
	if m.tagErr != nil {
		return tags.Value{}, m.tagErr
	}
	id, ok := tags.Lookup(name)
	if !ok {
		return tags.Value{}, service.ErrUnknownTag
	}
	f, err := m.GetTags(ctx)
	if err != nil {
		return tags.Value{}, err
	}
	return f.Get(id), nil
}

type mockEventLog struct {
	resp     []filling_line.LineEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]filling_line.LineEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

var t0 = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

// runningState is a machine reading with one active alarm.
func runningState() models.MachineState {
	var params models.Parameters
	params[models.FillVolume] = models.ProcessParameter{Target: 1000, Actual: 1016}
	params[models.LineSpeed] = models.ProcessParameter{Target: 450, Actual: 450}
	return models.MachineState{
		Identity:  models.Identity{Name: "Filler 1", SerialNumber: "SN-1"},
		Order:     models.ProductionOrder{Number: "PO-1", Quantity: 100, GoodBottles: 25},
		LotNumber: "LOT-2025-JUICE-031409",
		Params:    params,
		Status:    models.StatusRunning,
		Cleaning:  models.CleaningNormal,
		TankLevel: 80,
		Station:   3,
		Alarms: []models.Alarm{
			{Key: "fill_volume", Class: models.AlarmImmediate, Message: "Fill volume deviation: 1.6%"},
		},
		UpdatedAt: t0,
	}
}

// framesOf publishes states in order and returns the resulting frames.
func framesOf(states ...models.MachineState) []tags.Frame {
	space := tags.NewAddressSpace()
	out := make([]tags.Frame, 0, len(states))
	for _, s := range states {
		out = append(out, space.Publish(s))
	}
	return out
}
