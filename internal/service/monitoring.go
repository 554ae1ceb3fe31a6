package service

import (
	"context"
	"errors"

	"filling_line/internal/machine"
	"filling_line/internal/models"
	"filling_line/internal/tags"
)

var ErrUnknownTag = errors.New("unknown tag")

type MonitoringService struct {
	machine *machine.Machine
	space   *tags.AddressSpace
}

func NewMonitoringService(m *machine.Machine, space *tags.AddressSpace) *MonitoringService {
	return &MonitoringService{machine: m, space: space}
}

// GetState returns a fresh snapshot of the machine.
func (s *MonitoringService) GetState(ctx context.Context) (models.MachineState, error) {
	if err := ctx.Err(); err != nil {
		return models.MachineState{}, err
	}
	return s.machine.Snapshot(), nil
}

// GetTags returns the last published frame. Before the first tick the
// address space is populated from a snapshot.
func (s *MonitoringService) GetTags(ctx context.Context) (tags.Frame, error) {
	if err := ctx.Err(); err != nil {
		return tags.Frame{}, err
	}
	f := s.space.Current()
	if f.Version == 0 {
		f = s.space.Publish(s.machine.Snapshot())
	}
	return f, nil
}

func (s *MonitoringService) GetTag(ctx context.Context, name string) (tags.Value, error) {
	id, ok := tags.Lookup(name)
	if !ok {
		return tags.Value{}, ErrUnknownTag
	}
	f, err := s.GetTags(ctx)
	if err != nil {
		return tags.Value{}, err
	}
	return f.Get(id), nil
}
