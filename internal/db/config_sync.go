package db

import (
	"context"
	"fmt"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/model"
)

// SyncShopFromConfig applies shop.yaml to the database.
// It upserts staff, replaces their schedules, marks missing staff inactive
// and replaces config-sourced closures.
func (db *DB) SyncShopFromConfig(ctx context.Context, cfg *config.ShopConfig) error {
	if cfg == nil {
		return fmt.Errorf("shop config is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	seen := make(map[int64]struct{}, len(cfg.Staff))

	for _, s := range cfg.Staff {
		// Preserve created_at if the staff member already exists.
		_, err := tx.ExecContext(ctx, `
			INSERT INTO staff (id, name, is_active, created_at, updated_at)
			VALUES (?, ?, ?, COALESCE((SELECT created_at FROM staff WHERE id = ?), ?), ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				is_active = excluded.is_active,
				updated_at = excluded.updated_at`,
			s.ID, s.Name, s.IsActive, s.ID, now, now,
		)
		if err != nil {
			return fmt.Errorf("sync staff %d: %w", s.ID, err)
		}
		seen[s.ID] = struct{}{}

		if err := replaceIntervalsTx(ctx, tx, s.ID, model.KindWorkingHours, toIntervals(s.ID, model.KindWorkingHours, s.WorkingHours)); err != nil {
			return fmt.Errorf("sync staff %d working hours: %w", s.ID, err)
		}
		if err := replaceIntervalsTx(ctx, tx, s.ID, model.KindBreak, toIntervals(s.ID, model.KindBreak, s.Breaks)); err != nil {
			return fmt.Errorf("sync staff %d breaks: %w", s.ID, err)
		}
	}

	// Deactivate staff that disappeared from config.
	rows, err := tx.QueryContext(ctx, `SELECT id FROM staff WHERE is_active = 1`)
	if err != nil {
		return err
	}
	var missing []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range missing {
		if _, err := tx.ExecContext(ctx, `UPDATE staff SET is_active = 0, updated_at = ? WHERE id = ?`, now, id); err != nil {
			return fmt.Errorf("deactivate staff %d: %w", id, err)
		}
		db.logger.Info().Int64("staff_id", id).Msg("staff removed from config, deactivated")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM closures WHERE source = ?`, model.ClosureSourceConfig); err != nil {
		return fmt.Errorf("clear config closures: %w", err)
	}
	for _, c := range cfg.Closures {
		closure := &model.Closure{
			Date:      c.Date,
			StartTime: c.Start,
			EndTime:   c.End,
			Reason:    c.Reason,
			Source:    model.ClosureSourceConfig,
		}
		if err := insertClosure(ctx, tx, closure); err != nil {
			return fmt.Errorf("sync closure %s: %w", c.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	db.logger.Info().
		Int("staff", len(cfg.Staff)).
		Int("closures", len(cfg.Closures)).
		Msg("shop config synced to database")
	return nil
}

func toIntervals(staffID int64, kind string, entries []config.ScheduleEntry) []model.StaffInterval {
	out := make([]model.StaffInterval, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.StaffInterval{
			StaffID:   staffID,
			Kind:      kind,
			Day:       e.Day,
			StartTime: e.Start,
			EndTime:   e.End,
			Label:     e.Label,
		})
	}
	return out
}
