package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/haircutbot/store"
)

func (d *DB) CreateAppointment(ctx context.Context, create *store.Appointment) (*store.Appointment, error) {
	fields := []string{
		"uid", "creator_id", "task_id", "title", "comment",
		"start_ts", "end_ts", "timezone",
	}
	placeholderValues := []any{
		create.UID, create.CreatorID, create.TaskID, create.Title, create.Comment,
		create.StartTs, create.EndTs, create.Timezone,
	}

	if create.Status != "" {
		fields = append(fields, "status")
		placeholderValues = append(placeholderValues, create.Status.String())
	}
	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		placeholderValues = append(placeholderValues, create.UpdatedTs)
	}

	stmt := `INSERT INTO appointment (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, status, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.Status,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	return create, nil
}

func (d *DB) ListAppointments(ctx context.Context, find *store.FindAppointment) ([]*store.Appointment, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "appointment.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "appointment.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "appointment.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.TaskID; v != nil {
		where, args = append(where, "appointment.task_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "appointment.status = "+placeholder(len(args)+1)), append(args, v.String())
	}
	if v := find.StartFrom; v != nil {
		where, args = append(where, "appointment.start_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, creator_id, task_id, title, comment,
			start_ts, end_ts, timezone, status, created_ts, updated_ts
		FROM appointment
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY appointment.start_ts ASC, appointment.id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Appointment, 0)
	for rows.Next() {
		var appointment store.Appointment
		if err := rows.Scan(
			&appointment.ID,
			&appointment.UID,
			&appointment.CreatorID,
			&appointment.TaskID,
			&appointment.Title,
			&appointment.Comment,
			&appointment.StartTs,
			&appointment.EndTs,
			&appointment.Timezone,
			&appointment.Status,
			&appointment.CreatedTs,
			&appointment.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		list = append(list, &appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointments: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateAppointment(ctx context.Context, update *store.UpdateAppointment) error {
	set, args := []string{}, []any{}

	if v := update.Status; v != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, v.String())
	}
	if v := update.TaskID; v != nil {
		set, args = append(set, "task_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	} else {
		set = append(set, "updated_ts = strftime('%s', 'now')")
	}

	args = append(args, update.ID)

	stmt := `UPDATE appointment SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}
