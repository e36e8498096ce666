package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"zenith_pc_control/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	deviceStateRowID = 1

	upsertDeviceStateSQL = `
		INSERT INTO device_state (id, pc_status, pc_power, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pc_status=excluded.pc_status,
			pc_power=excluded.pc_power,
			updated_at=excluded.updated_at
	`

	// a fresh row starts with the line off
	upsertDeviceStatusSQL = `
		INSERT INTO device_state (id, pc_status, pc_power, updated_at)
		VALUES (?, ?, 0, ?)
		ON CONFLICT(id) DO UPDATE SET
			pc_status=excluded.pc_status,
			updated_at=excluded.updated_at
	`

	selectDeviceStateSQL = `
		SELECT id, pc_status, pc_power, updated_at
		FROM device_state WHERE id=?
	`
)

// Save upserts the device_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, rec models.DeviceRecord) error {
	_, err := r.db.ExecContext(ctx, upsertDeviceStateSQL,
		deviceStateRowID,
		rec.PcStatus.String(),
		rec.PcPower,
		utcOrNow(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save device state: %w", err)
	}
	return nil
}

// SaveStatus records a status transition without touching pc_power, so the
// last accepted power level survives for recovery.
func (r *StateSQLite) SaveStatus(ctx context.Context, status models.DeviceStatus, at time.Time) error {
	_, err := r.db.ExecContext(ctx, upsertDeviceStatusSQL,
		deviceStateRowID,
		status.String(),
		utcOrNow(at),
	)
	if err != nil {
		return fmt.Errorf("save device status: %w", err)
	}
	return nil
}

func utcOrNow(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now().UTC()
	}
	return ts.UTC()
}

// Load fetches the device_state row. A zero record (ID 0) means nothing was
// persisted yet.
func (r *StateSQLite) Load(ctx context.Context) (models.DeviceRecord, error) {
	row := r.db.QueryRowContext(ctx, selectDeviceStateSQL, deviceStateRowID)

	var (
		rec    models.DeviceRecord
		status string
	)
	if err := row.Scan(&rec.ID, &status, &rec.PcPower, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeviceRecord{}, nil
		}
		return models.DeviceRecord{}, fmt.Errorf("load device state: %w", err)
	}

	st, err := models.ParseDeviceStatus(status)
	if err != nil {
		return models.DeviceRecord{}, err
	}
	rec.PcStatus = st
	rec.UpdatedAt = rec.UpdatedAt.UTC()

	return rec, nil
}
