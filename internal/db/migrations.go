package db

import (
	"context"
	"fmt"
	"strings"
)

// addedColumns lists columns newer than the first schema, per table.
// Databases created before they existed get them on open.
var addedColumns = []struct {
	table, column, decl string
}{
	{"layout_config", "window_state", "TEXT"},
}

// migrate brings an existing database up to the current schema.
func (db *DB) migrate(ctx context.Context) error {
	for _, c := range addedColumns {
		ok, err := db.hasColumn(ctx, c.table, c.column)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.column, c.decl)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add %s.%s: %w", c.table, c.column, err)
		}
	}
	return db.FixLegacyTimeFormats(ctx)
}

func (db *DB) hasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// FixLegacyTimeFormats rewrites created_at values stored as Go time strings
// ("2006-01-02 15:04:05 +0000 UTC") so SQLite's date functions can read them.
func (db *DB) FixLegacyTimeFormats(ctx context.Context) error {
	queries := []string{
		`UPDATE points_history
		 SET created_at = SUBSTR(created_at, 1, 19)
		 WHERE length(created_at) > 19 AND created_at LIKE '% UTC'`,
		`UPDATE config
		 SET updated_at = SUBSTR(updated_at, 1, 19)
		 WHERE length(updated_at) > 19 AND updated_at LIKE '% UTC'`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to fix legacy time formats: %w", err)
		}
	}
	return nil
}
