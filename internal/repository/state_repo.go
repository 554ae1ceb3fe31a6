package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"filling_line/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	machineStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO machine_state (id, status, cleaning, tank_level, station, lot_number, expiration_date, production_order, parameters, counters, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			cleaning=excluded.cleaning,
			tank_level=excluded.tank_level,
			station=excluded.station,
			lot_number=excluded.lot_number,
			expiration_date=excluded.expiration_date,
			production_order=excluded.production_order,
			parameters=excluded.parameters,
			counters=excluded.counters,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT status, cleaning, tank_level, station, lot_number, expiration_date, production_order, parameters, counters, updated_at
		FROM machine_state WHERE id=?
	`
)

func marshalColumn(name string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	return string(b), nil
}

func unmarshalColumn(name, s string, v any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}

// Save upserts the machine_state row (id always 1). Alarms are not stored;
// they are recomputed from the next ticks.
func (r *StateSQLite) Save(ctx context.Context, state models.MachineState) error {
	order, err := marshalColumn("production_order", state.Order)
	if err != nil {
		return err
	}
	params, err := marshalColumn("parameters", state.Params)
	if err != nil {
		return err
	}
	counters, err := marshalColumn("counters", state.Counters)
	if err != nil {
		return err
	}

	tsUTC := state.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err = r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		machineStateRowID,
		string(state.Status),
		string(state.Cleaning),
		state.TankLevel,
		state.Station,
		state.LotNumber,
		state.ExpirationDate.UTC(),
		order,
		params,
		counters,
		tsUTC,
	)
	return err
}

// Load fetches the machine_state row. A database without a saved state
// yields the zero MachineState and no error.
func (r *StateSQLite) Load(ctx context.Context) (models.MachineState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, machineStateRowID)

	var (
		s                       models.MachineState
		status, cleaning        string
		order, params, counters string
	)
	if err := row.Scan(
		&status,
		&cleaning,
		&s.TankLevel,
		&s.Station,
		&s.LotNumber,
		&s.ExpirationDate,
		&order,
		&params,
		&counters,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MachineState{}, nil
		}
		return models.MachineState{}, err
	}

	if err := unmarshalColumn("production_order", order, &s.Order); err != nil {
		return models.MachineState{}, err
	}
	if err := unmarshalColumn("parameters", params, &s.Params); err != nil {
		return models.MachineState{}, err
	}
	if err := unmarshalColumn("counters", counters, &s.Counters); err != nil {
		return models.MachineState{}, err
	}

	s.Status = models.MachineStatus(status)
	s.Cleaning = models.CleaningStatus(cleaning)
	s.ExpirationDate = s.ExpirationDate.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
