package service

import (
	"context"
	"fmt"
	"time"

	"filling_line"
	"filling_line/internal/logger"
	"filling_line/internal/machine"
	"filling_line/internal/models"
	"filling_line/internal/repository"
	"filling_line/internal/tags"
)

// SimulatorService owns the tick loop: advance the machine, publish the
// address space, forward the frame, record transitions and persist the state.
type SimulatorService struct {
	machine    *machine.Machine
	space      *tags.AddressSpace
	stateRepo  repository.StateRepo
	events     *eventRecorder
	publishers []tags.Publisher
	log        *logger.Logger

	prev    models.MachineState
	hasPrev bool
}

func NewSimulatorService(
	m *machine.Machine,
	space *tags.AddressSpace,
	stateRepo repository.StateRepo,
	events *eventRecorder,
	publishers []tags.Publisher,
	log *logger.Logger,
) *SimulatorService {
	return &SimulatorService{
		machine:    m,
		space:      space,
		stateRepo:  stateRepo,
		events:     events,
		publishers: publishers,
		log:        log,
	}
}

// Restore loads the persisted state, if any, into the machine. The machine
// keeps its own status, so a restarted line always comes up stopped.
func (s *SimulatorService) Restore(ctx context.Context) error {
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load machine state: %w", err)
	}
	if st.UpdatedAt.IsZero() {
		s.log.Infow("no_persisted_state")
		return nil
	}
	s.machine.Restore(st)
	s.log.Infow("state_restored",
		"order", st.Order.Number,
		"lot", st.LotNumber,
		"total_bottles", st.Counters.TotalBottles(),
		"saved_at", st.UpdatedAt,
	)
	return nil
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.step(ctx)
		}
	}
}

// step runs one tick. A panic anywhere in the tick is logged and the loop
// keeps going.
func (s *SimulatorService) step(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("tick_panic", "panic", r)
		}
	}()

	state := s.machine.Tick()
	frame := s.space.Publish(state)

	s.recordTransitions(ctx, state)
	s.publish(ctx, frame)

	if err := s.stateRepo.Save(ctx, state); err != nil {
		s.log.Errorw("state_save_failed", "err", err)
	}
}

func (s *SimulatorService) publish(ctx context.Context, f tags.Frame) {
	for _, p := range s.publishers {
		if err := p.Publish(ctx, f); err != nil {
			s.log.Warnw("frame_publish_failed", "err", err, "version", f.Version)
		}
	}
}

// recordTransitions compares state with the previous tick and records
// status and cleaning changes and newly raised alarms.
func (s *SimulatorService) recordTransitions(ctx context.Context, state models.MachineState) {
	prev, hasPrev := s.prev, s.hasPrev
	s.prev, s.hasPrev = state, true
	at := state.UpdatedAt

	if !hasPrev {
		for _, a := range state.Alarms {
			s.recordAlarm(ctx, at, a)
		}
		return
	}

	if prev.Status != state.Status {
		s.log.Infow("status_changed", "from", prev.Status, "to", state.Status)
		s.events.record(ctx, at, filling_line.EventStatusChange,
			fmt.Sprintf("%s -> %s", prev.Status, state.Status),
			map[string]any{"from": prev.Status, "to": state.Status})
	}
	if prev.Cleaning != state.Cleaning {
		s.log.Infow("cleaning_changed", "from", prev.Cleaning, "to", state.Cleaning)
		s.events.record(ctx, at, filling_line.EventCleaningChange,
			fmt.Sprintf("%s -> %s", prev.Cleaning, state.Cleaning),
			map[string]any{"from": prev.Cleaning, "to": state.Cleaning})
	}

	raised := make(map[string]bool, len(prev.Alarms))
	for _, a := range prev.Alarms {
		raised[a.Key] = true
	}
	for _, a := range state.Alarms {
		if !raised[a.Key] {
			s.recordAlarm(ctx, at, a)
		}
	}
}

func (s *SimulatorService) recordAlarm(ctx context.Context, at time.Time, a models.Alarm) {
	typ := filling_line.EventAlarm
	if a.Class == models.AlarmEmergency {
		typ = filling_line.EventEmergency
	}
	s.log.Warnw("alarm_raised", "key", a.Key, "message", a.Message)
	s.events.record(ctx, at, typ, a.Message, map[string]any{
		"key":       a.Key,
		"parameter": a.Parameter,
		"class":     a.Class,
	})
}
