package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/points-dashboard-tui/internal/config"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

// DefaultSyncConfig is returned when no configuration has been saved.
func DefaultSyncConfig() models.SyncConfig {
	return models.SyncConfig{
		Revision:          config.DefaultRevision,
		TagID:             config.DefaultTagID,
		SubscriptionDay:   config.DefaultSubscriptionDay,
		AutoFetchInterval: config.DefaultAutoFetchInterval,
	}
}

// GetConfig returns the latest saved configuration, or the defaults.
func (db *DB) GetConfig(ctx context.Context) (models.SyncConfig, error) {
	query := `
		SELECT COALESCE(cookie, ''), COALESCE(form_key, ''), COALESCE(tchannel, ''),
			   COALESCE(revision, ''), COALESCE(tag_id, ''),
			   COALESCE(subscription_day, 1), COALESCE(auto_fetch_interval, 30),
			   COALESCE(auto_fetch_enabled, 0), updated_at
		FROM config ` + latestConfigClause

	cfg := DefaultSyncConfig()
	var revision, tagID string
	var updatedAt sql.NullTime
	err := db.QueryRowContext(ctx, query).Scan(
		&cfg.Cookie,
		&cfg.FormKey,
		&cfg.TChannel,
		&revision,
		&tagID,
		&cfg.SubscriptionDay,
		&cfg.AutoFetchInterval,
		&cfg.AutoFetchEnabled,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSyncConfig(), nil
	}
	if err != nil {
		return models.SyncConfig{}, fmt.Errorf("failed to get config: %w", err)
	}

	if revision != "" {
		cfg.Revision = revision
	}
	if tagID != "" {
		cfg.TagID = tagID
	}
	if cfg.AutoFetchInterval <= 0 {
		cfg.AutoFetchInterval = config.DefaultAutoFetchInterval
	}
	if updatedAt.Valid {
		cfg.UpdatedAt = updatedAt.Time
	}
	return cfg, nil
}

// UpsertConfig updates the latest config row, inserting one if none exists.
func (db *DB) UpsertConfig(ctx context.Context, cfg models.SyncConfig) error {
	if cfg.SubscriptionDay < 1 || cfg.SubscriptionDay > 31 {
		cfg.SubscriptionDay = config.DefaultSubscriptionDay
	}
	if cfg.AutoFetchInterval <= 0 {
		cfg.AutoFetchInterval = config.DefaultAutoFetchInterval
	}
	now := time.Now().UTC().Format(sqlTimeLayout)

	var id int64
	err := db.QueryRowContext(ctx, "SELECT id FROM config "+latestConfigClause).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.ExecContext(ctx, `
			INSERT INTO config (cookie, form_key, tchannel, revision, tag_id, subscription_day,
				auto_fetch_interval, auto_fetch_enabled, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cfg.Cookie, cfg.FormKey, cfg.TChannel,
			nullString(cfg.Revision), nullString(cfg.TagID),
			cfg.SubscriptionDay, cfg.AutoFetchInterval, cfg.AutoFetchEnabled, now,
		)
	case err == nil:
		_, err = db.ExecContext(ctx, `
			UPDATE config
			SET cookie = ?, form_key = ?, tchannel = ?, revision = ?, tag_id = ?,
				subscription_day = ?, auto_fetch_interval = ?, auto_fetch_enabled = ?, updated_at = ?
			WHERE id = ?`,
			cfg.Cookie, cfg.FormKey, cfg.TChannel,
			nullString(cfg.Revision), nullString(cfg.TagID),
			cfg.SubscriptionDay, cfg.AutoFetchInterval, cfg.AutoFetchEnabled, now, id,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// GetLayout returns the saved layout, or the default sidebar width.
func (db *DB) GetLayout(ctx context.Context) (models.Layout, error) {
	var (
		width       int
		grid, state sql.NullString
	)
	err := db.QueryRowContext(ctx,
		"SELECT COALESCE(sidebar_width, 400), grid_layout, window_state FROM layout_config "+latestConfigClause,
	).Scan(&width, &grid, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Layout{SidebarWidth: config.DefaultSidebarWidth}, nil
	}
	if err != nil {
		return models.Layout{}, fmt.Errorf("failed to get layout: %w", err)
	}

	layout := models.Layout{SidebarWidth: width}
	if grid.Valid && grid.String != "" {
		layout.GridLayout = []byte(grid.String)
	}
	if state.Valid && state.String != "" {
		layout.WindowState = []byte(state.String)
	}
	return layout, nil
}

// SaveLayout merges a partial update into the stored layout. The sidebar
// width is clamped to the supported range.
func (db *DB) SaveLayout(ctx context.Context, update models.LayoutUpdate) (models.Layout, error) {
	current, err := db.GetLayout(ctx)
	if err != nil {
		return models.Layout{}, err
	}

	if update.SidebarWidth != nil {
		current.SidebarWidth = ClampSidebarWidth(*update.SidebarWidth)
	}
	if len(update.GridLayout) > 0 {
		current.GridLayout = update.GridLayout
	}
	if len(update.WindowState) > 0 {
		current.WindowState = update.WindowState
	}

	_, err = db.ExecContext(ctx, `
		INSERT OR REPLACE INTO layout_config (id, sidebar_width, grid_layout, window_state, updated_at)
		VALUES (1, ?, ?, ?, ?)`,
		current.SidebarWidth,
		nullString(string(current.GridLayout)),
		nullString(string(current.WindowState)),
		time.Now().UTC().Format(sqlTimeLayout),
	)
	if err != nil {
		return models.Layout{}, fmt.Errorf("failed to save layout: %w", err)
	}
	return current, nil
}

// ClampSidebarWidth limits a sidebar width to the supported range.
func ClampSidebarWidth(w int) int {
	if w < config.MinSidebarWidth {
		return config.MinSidebarWidth
	}
	if w > config.MaxSidebarWidth {
		return config.MaxSidebarWidth
	}
	return w
}
