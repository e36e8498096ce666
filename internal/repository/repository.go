package repository

import (
	"context"
	"database/sql"
	"time"

	"zenith_pc_control/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
	Count() (int, error)
}

// StateRepo persists the last known device record (single row). Only Save
// writes pc_power; SaveStatus leaves it as it was.
type StateRepo interface {
	Save(ctx context.Context, r models.DeviceRecord) error
	SaveStatus(ctx context.Context, status models.DeviceStatus, at time.Time) error
	Load(ctx context.Context) (models.DeviceRecord, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.DeviceEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error)
}

// LogStore is the append-only text log with single-generation rotation.
type LogStore interface {
	Append(line string) error
	Read() (string, error)
	ReadOld() (string, error)
	Tail(maxBytes int) (string, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Auth      Authorization
	Logs      LogStore
}

func NewRepository(db *sql.DB, logs LogStore) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
		Logs:      logs,
	}
}
