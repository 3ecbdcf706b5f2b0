package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"slotbook/internal/model"
)

// GetStaff returns a staff member by id.
func (db *DB) GetStaff(ctx context.Context, id int64) (*model.Staff, error) {
	var s model.Staff
	err := db.QueryRowContext(ctx, `
		SELECT id, name, is_active, created_at, updated_at
		FROM staff WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("staff %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListActiveStaff returns active staff ordered by id.
func (db *DB) ListActiveStaff(ctx context.Context) ([]model.Staff, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, is_active, created_at, updated_at
		FROM staff WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []model.Staff
	for rows.Next() {
		var s model.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// ListWorkingHours returns every working-hours window for a staff member, all days.
func (db *DB) ListWorkingHours(ctx context.Context, staffID int64) ([]model.StaffInterval, error) {
	return db.listIntervals(ctx, staffID, model.KindWorkingHours)
}

// ListBreaks returns every break for a staff member, all days.
func (db *DB) ListBreaks(ctx context.Context, staffID int64) ([]model.StaffInterval, error) {
	return db.listIntervals(ctx, staffID, model.KindBreak)
}

func (db *DB) listIntervals(ctx context.Context, staffID int64, kind string) ([]model.StaffInterval, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, staff_id, kind, day_of_week, start_time, end_time, label
		FROM staff_intervals
		WHERE staff_id = ? AND kind = ?
		ORDER BY id`,
		staffID, kind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.StaffInterval
	for rows.Next() {
		var iv model.StaffInterval
		var day, label sql.NullString
		if err := rows.Scan(&iv.ID, &iv.StaffID, &iv.Kind, &day, &iv.StartTime, &iv.EndTime, &label); err != nil {
			return nil, err
		}
		if day.Valid {
			iv.Day = day.String
		}
		if label.Valid {
			iv.Label = label.String
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func replaceIntervalsTx(ctx context.Context, tx *sql.Tx, staffID int64, kind string, intervals []model.StaffInterval) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM staff_intervals WHERE staff_id = ? AND kind = ?`, staffID, kind,
	); err != nil {
		return fmt.Errorf("clear %s intervals: %w", kind, err)
	}

	for _, iv := range intervals {
		var day, label sql.NullString
		if d := strings.ToLower(strings.TrimSpace(iv.Day)); d != "" {
			day = sql.NullString{String: d, Valid: true}
		}
		if iv.Label != "" {
			label = sql.NullString{String: iv.Label, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO staff_intervals (staff_id, kind, day_of_week, start_time, end_time, label)
			VALUES (?, ?, ?, ?, ?, ?)`,
			staffID, kind, day, iv.StartTime, iv.EndTime, label,
		); err != nil {
			return fmt.Errorf("insert %s interval: %w", kind, err)
		}
	}
	return nil
}
