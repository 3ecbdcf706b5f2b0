package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"slotbook/internal/model"
)

// Full-day closure bounds.
const (
	DayStart = "00:00"
	DayEnd   = "24:00"
)

// SetClosure records a closure. Empty start and end close the whole day.
func (db *DB) SetClosure(ctx context.Context, c *model.Closure) error {
	if c == nil {
		return fmt.Errorf("closure is nil")
	}
	return insertClosure(ctx, db.DB, c)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertClosure(ctx context.Context, ex execer, c *model.Closure) error {
	if c.StartTime == "" && c.EndTime == "" {
		c.StartTime, c.EndTime = DayStart, DayEnd
	}
	if c.Source == "" {
		c.Source = model.ClosureSourceManual
	}
	c.CreatedAt = time.Now()

	res, err := ex.ExecContext(ctx, `
		INSERT INTO closures (date, start_time, end_time, reason, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.Date, c.StartTime, c.EndTime, c.Reason, c.Source, c.CreatedAt,
	)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

// DeleteClosure removes a closure by id.
func (db *DB) DeleteClosure(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM closures WHERE id = ?`, id)
	return err
}

// ListClosuresOnDate returns closures for date (YYYY-MM-DD).
func (db *DB) ListClosuresOnDate(ctx context.Context, date string) ([]model.Closure, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, date, start_time, end_time, reason, source, created_at
		FROM closures WHERE date = ?
		ORDER BY start_time`,
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Closure
	for rows.Next() {
		var c model.Closure
		var reason sql.NullString
		if err := rows.Scan(&c.ID, &c.Date, &c.StartTime, &c.EndTime, &reason, &c.Source, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Reason = reason.String
		out = append(out, c)
	}
	return out, rows.Err()
}
