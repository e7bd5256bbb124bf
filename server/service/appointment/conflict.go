package appointment

import (
	"context"
	"time"

	"github.com/hrygo/haircutbot/server/internal/observability"
	"github.com/hrygo/haircutbot/store"
)

// conflictLookback bounds how long before start an overlapping appointment
// may begin.
const conflictLookback = 24 * time.Hour

// findConflicts returns the creator's active appointments that overlap
// [start, end). Lookup failures are logged and reported as no conflicts.
func (s *service) findConflicts(ctx context.Context, creatorID int64, start, end time.Time) []*store.Appointment {
	status := store.AppointmentActive
	from := start.Add(-conflictLookback).Unix()
	list, err := s.store.ListAppointments(ctx, &store.FindAppointment{
		CreatorID: &creatorID,
		Status:    &status,
		StartFrom: &from,
	})
	if err != nil {
		observability.LoggerFrom(ctx, s.logger).Warn("failed to check conflicts", "error", err)
		return nil
	}

	var conflicts []*store.Appointment
	for _, a := range list {
		if a.StartTs < end.Unix() && a.EndTs > start.Unix() {
			conflicts = append(conflicts, a)
		}
	}
	if len(conflicts) > 0 {
		observability.LoggerFrom(ctx, s.logger).Info("conflicts detected",
			"requested_start", start.Format(time.RFC3339),
			"conflict_count", len(conflicts),
		)
	}
	return conflicts
}
