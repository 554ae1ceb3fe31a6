package service

import (
	"context"
	"time"

	"filling_line"
	"filling_line/internal/logger"
	"filling_line/internal/repository"

	"github.com/google/uuid"
)

// eventRecorder appends line events and keeps the log within retention.
// Failures are logged and swallowed; the event log never blocks the line.
type eventRecorder struct {
	repo      repository.EventRepo
	retention int
	log       *logger.Logger
}

func newEventRecorder(repo repository.EventRepo, retention int, log *logger.Logger) *eventRecorder {
	return &eventRecorder{repo: repo, retention: retention, log: log}
}

func (r *eventRecorder) record(ctx context.Context, at time.Time, typ, description string, meta map[string]any) {
	ev := filling_line.LineEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  at.UTC(),
		Type:        typ,
		Description: description,
	}
	if meta != nil {
		ev.Metadata = meta
	}
	if err := r.repo.Append(ctx, ev); err != nil {
		r.log.Errorw("event_append_failed", "err", err, "type", typ)
		return
	}
	if r.retention <= 0 {
		return
	}
	if n, err := r.repo.Prune(ctx, r.retention); err != nil {
		r.log.Errorw("event_prune_failed", "err", err, "keep", r.retention)
	} else if n > 0 {
		r.log.Debugw("events_pruned", "deleted", n, "keep", r.retention)
	}
}
