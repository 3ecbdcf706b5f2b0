package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotbook/internal/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const appointmentColumns = `id, staff_id, service_code, client_name, client_phone, date,
	start_time, end_time, status, comment, created_at, updated_at`

func scanAppointment(row rowScanner) (*model.Appointment, error) {
	var a model.Appointment
	var phone, comment sql.NullString
	if err := row.Scan(
		&a.ID, &a.StaffID, &a.ServiceCode, &a.ClientName, &phone, &a.Date,
		&a.StartTime, &a.EndTime, &a.Status, &comment, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.ClientPhone = phone.String
	a.Comment = comment.String
	return &a, nil
}

// ListAppointmentsOnDate returns active appointments for a staff member on date (YYYY-MM-DD).
func (db *DB) ListAppointmentsOnDate(ctx context.Context, staffID int64, date string) ([]model.Appointment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE staff_id = ? AND date = ?
		AND status NOT IN ('canceled', 'rejected')
		ORDER BY start_time`,
		staffID, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// GetAppointment returns an appointment by id.
func (db *DB) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := scanAppointment(db.QueryRowContext(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("appointment %d: %w", id, ErrNotFound)
	}
	return a, err
}

// CreateAppointment inserts an appointment unless an active one for the same
// staff member already overlaps it. The check and insert share a transaction.
func (db *DB) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if a == nil {
		return fmt.Errorf("appointment is nil")
	}
	if a.Status == "" {
		a.Status = model.StatusPending
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	// Times are zero-padded "HH:MM" so string comparison orders them.
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE staff_id = ? AND date = ?
		AND start_time < ? AND end_time > ?
		AND status NOT IN ('canceled', 'rejected')`,
		a.StaffID, a.Date, a.EndTime, a.StartTime,
	).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSlotTaken
	}

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO appointments (
			staff_id, service_code, client_name, client_phone, date,
			start_time, end_time, status, comment, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.StaffID, a.ServiceCode, a.ClientName, a.ClientPhone, a.Date,
		a.StartTime, a.EndTime, a.Status, a.Comment, now, now,
	)
	if err != nil {
		return err
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	a.CreatedAt, a.UpdatedAt = now, now

	return tx.Commit()
}

// UpdateAppointmentStatus changes the status of an appointment.
func (db *DB) UpdateAppointmentStatus(ctx context.Context, id int64, status string) error {
	if !model.ValidStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("appointment %d: %w", id, ErrNotFound)
	}
	return nil
}
