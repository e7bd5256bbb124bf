package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/haircutbot/server/timezone"
	"github.com/hrygo/haircutbot/store"
)

// ResolveResponse is the resolved appointment window.
type ResolveResponse struct {
	Text      string    `json:"text"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Timezone  string    `json:"timezone"`
	Strategy  string    `json:"strategy"`
	TimeFound bool      `json:"time_found"`
	Display   string    `json:"display"`
}

// Resolve resolves a free-text message into an appointment window.
// GET /api/v1/resolve?text=...&anchor=2006-01-02
func (s *APIV1Service) Resolve(c echo.Context) error {
	text := c.QueryParam("text")
	if text == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "text is required"})
	}

	loc := s.Resolver.Location()
	now := s.now().In(loc)
	if raw := c.QueryParam("anchor"); raw != "" {
		anchor, err := timezone.ParseDate(raw, loc)
		if err != nil {
			slog.Warn("invalid anchor in resolve request", "anchor", raw, "error", err)
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid anchor, expected YYYY-MM-DD"})
		}
		now = anchor
	}

	resolved, ok := s.Resolver.Resolve(c.Request().Context(), text, now)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no date found"})
	}
	window := s.Resolver.Window(resolved)

	return c.JSON(http.StatusOK, ResolveResponse{
		Text:      text,
		Start:     window.Start,
		End:       window.End,
		Timezone:  loc.String(),
		Strategy:  resolved.Strategy,
		TimeFound: resolved.TimeFound,
		Display:   timezone.FormatAppointment(window.Start, loc),
	})
}

// AppointmentResponse is a stored appointment.
type AppointmentResponse struct {
	UID       string    `json:"uid"`
	CreatorID int64     `json:"creator_id"`
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
}

// ListAppointments lists upcoming active appointments, optionally for one user.
// GET /api/v1/appointments?user_id=...&limit=...
func (s *APIV1Service) ListAppointments(c echo.Context) error {
	if s.Appointments == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "store is not configured"})
	}

	status := store.AppointmentActive
	from := s.now().Unix()
	limit := 50
	find := &store.FindAppointment{Status: &status, StartFrom: &from, Limit: &limit}

	if raw := c.QueryParam("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user_id"})
		}
		find.CreatorID = &userID
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = n
	}

	list, err := s.Appointments.ListAppointments(c.Request().Context(), find)
	if err != nil {
		slog.Error("failed to list appointments", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list appointments"})
	}

	resp := make([]AppointmentResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, AppointmentResponse{
			UID:       a.UID,
			CreatorID: a.CreatorID,
			TaskID:    a.TaskID,
			Title:     a.Title,
			Comment:   a.Comment,
			Start:     a.StartTime(),
			End:       a.EndTime(),
			Status:    a.Status.String(),
		})
	}
	return c.JSON(http.StatusOK, resp)
}
