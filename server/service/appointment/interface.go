package appointment

import (
	"context"
	"time"

	"github.com/hrygo/haircutbot/plugin/todoist"
	"github.com/hrygo/haircutbot/server/service/users"
	"github.com/hrygo/haircutbot/store"
)

// Service books appointments from chat messages into Todoist and keeps a
// local record of them.
type Service interface {
	// Schedule resolves the date in req.Text, creates the Todoist task and
	// stores the appointment.
	Schedule(ctx context.Context, req *ScheduleRequest) (*Result, error)

	// Cancel deletes the Todoist task with taskID using userID's token and
	// marks the stored appointment cancelled.
	Cancel(ctx context.Context, userID int64, taskID string) error

	// List returns userID's active appointments starting at or after now.
	List(ctx context.Context, userID int64, now time.Time, limit int) ([]*store.Appointment, error)
}

// ScheduleRequest is a chat message to book.
type ScheduleRequest struct {
	UserID int64
	Text   string
	// Now is the moment the message arrived. Its calendar date in the
	// service timezone is the resolution anchor.
	Now time.Time
}

// Result describes a booked appointment.
type Result struct {
	Appointment *store.Appointment
	TaskID      string
	Title       string
	Comment     string
	Start       time.Time
	End         time.Time
	// TimeFound is false when the default time of day was used.
	TimeFound bool
	// Conflicts are the user's active appointments overlapping this one.
	Conflicts []*store.Appointment
}

// Duration returns the appointment length.
func (r *Result) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Store is the interface for store operations needed by the appointment service.
type Store interface {
	CreateAppointment(ctx context.Context, create *store.Appointment) (*store.Appointment, error)
	ListAppointments(ctx context.Context, find *store.FindAppointment) ([]*store.Appointment, error)
	GetAppointment(ctx context.Context, find *store.FindAppointment) (*store.Appointment, error)
	UpdateAppointment(ctx context.Context, update *store.UpdateAppointment) error
}

// Users resolves the Todoist configuration of a user.
type Users interface {
	Config(userID int64) (users.UserConfig, bool)
}

// ClientFactory returns a Todoist client authenticated with token.
type ClientFactory func(token string) todoist.TaskClient

// NewClientFactory returns a factory of REST clients for baseURL.
func NewClientFactory(baseURL string, opts ...todoist.Option) ClientFactory {
	return func(token string) todoist.TaskClient {
		return todoist.NewClient(baseURL, token, opts...)
	}
}
