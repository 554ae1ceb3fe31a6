package service

import (
	"context"

	"filling_line"
	"filling_line/internal/logger"
	"filling_line/internal/machine"
	"filling_line/internal/tags"
)

type ControlService struct {
	machine    *machine.Machine
	dispatcher *tags.Dispatcher
	space      *tags.AddressSpace
	events     *eventRecorder
	log        *logger.Logger
}

func NewControlService(m *machine.Machine, space *tags.AddressSpace, events *eventRecorder, log *logger.Logger) *ControlService {
	return &ControlService{
		machine:    m,
		dispatcher: tags.NewDispatcher(m),
		space:      space,
		events:     events,
		log:        log,
	}
}

// Call dispatches a method, records it as a COMMAND event and republishes
// the address space so readers see the effect before the next tick.
// Unknown methods are answered but not recorded.
func (s *ControlService) Call(ctx context.Context, method string, args []any) tags.Result {
	res := s.dispatcher.Call(method, args)

	switch res.Code {
	case tags.Good:
		s.log.Infow("method_called", "method", method, "args", args)
	case tags.BadInternalError:
		s.log.Errorw("method_failed", "method", method, "message", res.Message)
	default:
		s.log.Warnw("method_rejected", "method", method, "code", res.Code.String(), "message", res.Message)
	}
	if res.Code == tags.BadMethodInvalid {
		return res
	}

	state := s.machine.Snapshot()
	s.space.Publish(state)

	meta := map[string]any{"method": method, "code": res.Code.String()}
	if len(args) > 0 {
		meta["args"] = args
	}
	if len(res.Outputs) > 0 {
		meta["outputs"] = res.Outputs
	}
	if res.Message != "" {
		meta["message"] = res.Message
	}
	s.events.record(ctx, state.UpdatedAt, filling_line.EventCommand, method, meta)

	return res
}

func (s *ControlService) Methods() []tags.Method {
	return tags.Methods()
}
