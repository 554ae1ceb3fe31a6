package service

import (
	"context"
	"time"

	"filling_line"
	"filling_line/internal/logger"
	"filling_line/internal/machine"
	"filling_line/internal/models"
	"filling_line/internal/repository"
	"filling_line/internal/tags"
)

// Control invokes machine methods by name through the dispatch table.
type Control interface {
	Call(ctx context.Context, method string, args []any) tags.Result
	Methods() []tags.Method
}

// Monitoring exposes read-only views of the machine and its address space.
type Monitoring interface {
	GetState(ctx context.Context) (models.MachineState, error)
	GetTags(ctx context.Context) (tags.Frame, error)
	GetTag(ctx context.Context, name string) (tags.Value, error)
}

// EventLog exposes the persisted line events with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]filling_line.LineEvent, error)
}

// Simulator drives the machine from a periodic tick. Stop Run by
// cancelling ctx.
type Simulator interface {
	Restore(ctx context.Context) error
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Control
	Monitoring
	EventLog
	Simulator
}

// Options carries the collaborators that are not repositories.
type Options struct {
	Log *logger.Logger
	// Publishers receive every frame after the address space is updated.
	Publishers []tags.Publisher
	// EventRetention is the number of newest events kept; 0 keeps everything.
	EventRetention int
}

// NewService wires the machine, its address space and the repositories into
// the concrete services. All services share one AddressSpace.
func NewService(repos *repository.Repository, m *machine.Machine, opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	space := tags.NewAddressSpace()
	events := newEventRecorder(repos.EventRepo, opts.EventRetention, log.Named("events"))

	return &Service{
		Control:    NewControlService(m, space, events, log.Named("control")),
		Monitoring: NewMonitoringService(m, space),
		EventLog:   NewEventLogService(repos.EventRepo),
		Simulator:  NewSimulatorService(m, space, repos.StateRepo, events, opts.Publishers, log.Named("simulator")),
	}
}
