package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"filling_line"
	"filling_line/internal/logger"
	"filling_line/internal/machine"
	"filling_line/internal/models"
	"filling_line/internal/tags"

	"github.com/juju/clock/testclock"
)

var t0 = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

func newTestMachine(t *testing.T, opts ...machine.Option) (*machine.Machine, *testclock.Clock) {
	t.Helper()
	clk := testclock.NewClock(t0)
	opts = append([]machine.Option{machine.WithClock(clk), machine.WithRandom(fixedRandom(0.5))}, opts...)
	return machine.New(opts...), clk
}

// stateRepoStub is a minimal stub for repository.StateRepo.
type stateRepoStub struct {
	loadResp models.MachineState
	loadErr  error
	saveErr  error
	saves    []models.MachineState
}

func (s *stateRepoStub) Save(ctx context.Context, st models.MachineState) error {
	s.saves = append(s.saves, st)
	return s.saveErr
}

func (s *stateRepoStub) Load(ctx context.Context) (models.MachineState, error) {
	return s.loadResp, s.loadErr
}

// eventRepoStub records appended events in memory.
type eventRepoStub struct {
	mu        sync.Mutex
	appends   []filling_line.LineEvent
	appendErr error
	prunes    []int

	listResp  []filling_line.LineEvent
	listErr   error
	listCalls int
	listFrom  time.Time
	listTo    time.Time
	listType  string
}

func (e *eventRepoStub) Append(ctx context.Context, ev filling_line.LineEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.appendErr != nil {
		return e.appendErr
	}
	e.appends = append(e.appends, ev)
	return nil
}

func (e *eventRepoStub) List(ctx context.Context, from, to time.Time, typ string) ([]filling_line.LineEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listCalls++
	e.listFrom, e.listTo, e.listType = from, to, typ
	return e.listResp, e.listErr
}

func (e *eventRepoStub) Prune(ctx context.Context, keep int) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prunes = append(e.prunes, keep)
	return 0, nil
}

func (e *eventRepoStub) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.appends))
	for _, ev := range e.appends {
		out = append(out, ev.Type)
	}
	return out
}

func (e *eventRepoStub) ofType(typ string) []filling_line.LineEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []filling_line.LineEvent
	for _, ev := range e.appends {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// publisherStub captures frames and can fail or panic on demand.
type publisherStub struct {
	frames []tags.Frame
	err    error
	panics bool
}

func (p *publisherStub) Publish(ctx context.Context, f tags.Frame) error {
	if p.panics {
		panic("publisher exploded")
	}
	p.frames = append(p.frames, f)
	return p.err
}

var errDown = errors.New("db down")

func newRecorder(repo *eventRepoStub, retention int) *eventRecorder {
	return newEventRecorder(repo, retention, logger.Nop())
}
