package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Type returns the driver name used to pick the schema ("sqlite" or "postgres").
	Type() string

	// Appointment model related methods.
	CreateAppointment(ctx context.Context, create *Appointment) (*Appointment, error)
	ListAppointments(ctx context.Context, find *FindAppointment) ([]*Appointment, error)
	UpdateAppointment(ctx context.Context, update *UpdateAppointment) error
}
