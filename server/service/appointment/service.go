package appointment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/haircutbot/plugin/dateparse"
	"github.com/hrygo/haircutbot/plugin/todoist"
	boterrors "github.com/hrygo/haircutbot/server/internal/errors"
	"github.com/hrygo/haircutbot/server/internal/observability"
	"github.com/hrygo/haircutbot/store"
)

type service struct {
	store    Store
	users    Users
	resolver *dateparse.Service
	clients  ClientFactory
	logger   *slog.Logger
}

// NewService creates a new appointment service.
func NewService(store Store, users Users, resolver *dateparse.Service, clients ClientFactory, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		store:    store,
		users:    users,
		resolver: resolver,
		clients:  clients,
		logger:   logger,
	}
}

// ExtractComment returns the text after the first line break, trimmed.
func ExtractComment(text string) string {
	_, comment, found := strings.Cut(text, "\n")
	if !found {
		return ""
	}
	return strings.TrimSpace(comment)
}

func (s *service) Schedule(ctx context.Context, req *ScheduleRequest) (*Result, error) {
	logger := observability.LoggerFrom(ctx, s.logger)
	start := time.Now()
	defer func() {
		logger.Debug("schedule appointment",
			"user_id", req.UserID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	cfg, ok := s.users.Config(req.UserID)
	if !ok || strings.TrimSpace(cfg.TodoistToken) == "" {
		return nil, boterrors.ConfigMissing(req.UserID)
	}

	resolved, ok := s.resolver.Resolve(ctx, req.Text, req.Now)
	if !ok {
		return nil, boterrors.NoDateFound(req.Text)
	}
	window := s.resolver.Window(resolved)
	conflicts := s.findConflicts(ctx, req.UserID, window.Start, window.End)

	comment := ExtractComment(req.Text)
	description := ""
	if cfg.AddComment {
		description = comment
	}

	task, err := s.clients(cfg.TodoistToken).CreateTask(ctx,
		todoist.NewTaskRequest(cfg.EventTitle, description, window.Start, window.Duration()))
	if err != nil {
		return nil, boterrors.TodoistUnavailable("failed to create task", err)
	}
	logger.Info("todoist task created", "task_id", task.ID, "start", window.Start.Format(time.RFC3339))

	appointment, err := s.store.CreateAppointment(ctx, &store.Appointment{
		UID:       shortuuid.New(),
		CreatorID: req.UserID,
		TaskID:    task.ID,
		Title:     cfg.EventTitle,
		Comment:   comment,
		StartTs:   window.Start.Unix(),
		EndTs:     window.End.Unix(),
		Timezone:  s.resolver.Location().String(),
		Status:    store.AppointmentActive,
	})
	if err != nil {
		// The task exists in Todoist; the local record is best effort.
		logger.Error("failed to store appointment", "task_id", task.ID, "error", err)
		appointment = nil
	}

	return &Result{
		Appointment: appointment,
		TaskID:      task.ID,
		Title:       cfg.EventTitle,
		Comment:     comment,
		Start:       window.Start,
		End:         window.End,
		TimeFound:   resolved.TimeFound,
		Conflicts:   conflicts,
	}, nil
}

func (s *service) Cancel(ctx context.Context, userID int64, taskID string) error {
	logger := observability.LoggerFrom(ctx, s.logger)

	if strings.TrimSpace(taskID) == "" {
		return boterrors.InvalidArgument("task ID is empty")
	}
	cfg, ok := s.users.Config(userID)
	if !ok || strings.TrimSpace(cfg.TodoistToken) == "" {
		return boterrors.ConfigMissing(userID)
	}

	if err := s.clients(cfg.TodoistToken).DeleteTask(ctx, taskID); err != nil {
		var apiErr *todoist.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return boterrors.Wrap(err, boterrors.ErrCodeTaskNotFound, "task "+taskID+" not found")
		}
		return boterrors.TodoistUnavailable("failed to delete task", err)
	}
	logger.Info("todoist task deleted", "task_id", taskID)

	appointment, err := s.store.GetAppointment(ctx, &store.FindAppointment{TaskID: &taskID})
	if err != nil {
		logger.Error("failed to find appointment", "task_id", taskID, "error", err)
		return nil
	}
	if appointment == nil {
		return nil
	}

	cancelled := store.AppointmentCancelled
	if err := s.store.UpdateAppointment(ctx, &store.UpdateAppointment{ID: appointment.ID, Status: &cancelled}); err != nil {
		logger.Error("failed to mark appointment cancelled", "task_id", taskID, "error", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, userID int64, now time.Time, limit int) ([]*store.Appointment, error) {
	active := store.AppointmentActive
	from := now.Unix()
	find := &store.FindAppointment{
		CreatorID: &userID,
		Status:    &active,
		StartFrom: &from,
	}
	if limit > 0 {
		find.Limit = &limit
	}

	list, err := s.store.ListAppointments(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list appointments")
	}
	return list, nil
}
