package repository

import (
	"context"
	"database/sql"
	"time"

	"filling_line"
	"filling_line/internal/models"
)

type StateRepo interface {
	Save(ctx context.Context, s models.MachineState) error
	Load(ctx context.Context) (models.MachineState, error)
}

type EventRepo interface {
	Append(ctx context.Context, e filling_line.LineEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]filling_line.LineEvent, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
	}
}
