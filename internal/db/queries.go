package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

// RecordExists reports whether a points record with id is stored.
func (db *DB) RecordExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM points_history WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check record %s: %w", id, err)
	}
	return exists, nil
}

// InsertRecord stores a new points record.
func (db *DB) InsertRecord(ctx context.Context, r *models.PointsRecord) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `INSERT INTO points_history (` + sqlRecordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		r.ID,
		r.PointCost,
		r.CreationTime,
		r.BotName,
		r.BotID,
		r.Cursor,
		createdAt.UTC().Format(sqlTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record %s: %w", r.ID, err)
	}
	r.CreatedAt = createdAt
	return nil
}

// UpdateRecord overwrites the fields of an existing record.
func (db *DB) UpdateRecord(ctx context.Context, r *models.PointsRecord) error {
	query := `
		UPDATE points_history
		SET point_cost = ?, creation_time = ?, bot_name = ?, bot_id = ?, cursor = ?
		WHERE id = ?
	`
	_, err := db.ExecContext(ctx, query,
		r.PointCost,
		r.CreationTime,
		r.BotName,
		r.BotID,
		r.Cursor,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", r.ID, err)
	}
	return nil
}

// LatestRecords returns the newest records first.
func (db *DB) LatestRecords(ctx context.Context, limit int) ([]models.PointsRecord, error) {
	query := `SELECT ` + sqlRecordColumns + ` FROM points_history ORDER BY creation_time DESC LIMIT ?`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

// RecordsInRange returns records with start <= creation_time < end, oldest
// first. Bounds are microseconds since the epoch.
func (db *DB) RecordsInRange(ctx context.Context, start, end int64) ([]models.PointsRecord, error) {
	query := `
		SELECT ` + sqlRecordColumns + `
		FROM points_history
		WHERE creation_time >= ? AND creation_time < ?
		ORDER BY creation_time ASC
	`

	rows, err := db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query records in range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

// BotStats returns total cost and count per bot, most expensive first.
func (db *DB) BotStats(ctx context.Context) ([]models.BotStat, error) {
	query := `
		SELECT bot_name, SUM(point_cost) AS total_cost, COUNT(*) AS count
		FROM points_history
		GROUP BY bot_name
		ORDER BY total_cost DESC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bot stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := []models.BotStat{}
	for rows.Next() {
		var s models.BotStat
		if err := rows.Scan(&s.BotName, &s.TotalCost, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan bot stat: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// SumSince returns the total point cost of records created at or after since.
func (db *DB) SumSince(ctx context.Context, since int64) (int64, error) {
	var total int64
	err := db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(point_cost), 0) FROM points_history WHERE creation_time >= ?",
		since).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return total, nil
}

// CountRecords returns the number of stored records.
func (db *DB) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM points_history").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]models.PointsRecord, error) {
	records := []models.PointsRecord{}
	for rows.Next() {
		var r models.PointsRecord
		var createdAt sql.NullTime
		if err := rows.Scan(
			&r.ID,
			&r.PointCost,
			&r.CreationTime,
			&r.BotName,
			&r.BotID,
			&r.Cursor,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if createdAt.Valid {
			r.CreatedAt = createdAt.Time
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
