package db

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/j-veylop/points-dashboard-tui/internal/config"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

func TestGetConfig_Defaults(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	cfg, err := db.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig() failed: %v", err)
	}
	if cfg.Revision != config.DefaultRevision || cfg.TagID != config.DefaultTagID {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.SubscriptionDay != 1 || cfg.AutoFetchInterval != 30 || cfg.AutoFetchEnabled {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.HasCredentials() {
		t.Error("default config should have no credentials")
	}
}

func TestUpsertConfig(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	in := models.SyncConfig{
		Cookie: "p-b=1", FormKey: "fk", TChannel: "ch",
		SubscriptionDay: 15, AutoFetchInterval: 10, AutoFetchEnabled: true,
	}
	if err := db.UpsertConfig(ctx, in); err != nil {
		t.Fatalf("UpsertConfig() insert failed: %v", err)
	}

	in.FormKey = "fk2"
	in.Revision = "rev"
	if err := db.UpsertConfig(ctx, in); err != nil {
		t.Fatalf("UpsertConfig() update failed: %v", err)
	}

	var rows int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM config").Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("config rows = %d, want 1", rows)
	}

	got, err := db.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig() failed: %v", err)
	}
	if got.FormKey != "fk2" || got.Revision != "rev" || got.TagID != config.DefaultTagID {
		t.Errorf("GetConfig() = %+v", got)
	}
	if got.SubscriptionDay != 15 || got.AutoFetchInterval != 10 || !got.AutoFetchEnabled {
		t.Errorf("GetConfig() settings = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestUpsertConfig_InvalidValues(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if err := db.UpsertConfig(ctx, models.SyncConfig{SubscriptionDay: 40, AutoFetchInterval: -5}); err != nil {
		t.Fatal(err)
	}
	got, _ := db.GetConfig(ctx)
	if got.SubscriptionDay != 1 || got.AutoFetchInterval != 30 {
		t.Errorf("invalid values not normalised: %+v", got)
	}
}

func TestLayout(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()
	ctx := context.Background()

	layout, err := db.GetLayout(ctx)
	if err != nil {
		t.Fatalf("GetLayout() failed: %v", err)
	}
	if layout.SidebarWidth != 400 || layout.GridLayout != nil {
		t.Errorf("default layout = %+v", layout)
	}

	width := 1000
	saved, err := db.SaveLayout(ctx, models.LayoutUpdate{
		SidebarWidth: &width,
		GridLayout:   json.RawMessage(`[{"i":"chart"}]`),
	})
	if err != nil {
		t.Fatalf("SaveLayout() failed: %v", err)
	}
	if saved.SidebarWidth != 600 {
		t.Errorf("SidebarWidth = %d, want clamped 600", saved.SidebarWidth)
	}

	// A partial update keeps the other fields.
	if _, err := db.SaveLayout(ctx, models.LayoutUpdate{WindowState: json.RawMessage(`{"dock":[]}`)}); err != nil {
		t.Fatalf("SaveLayout() failed: %v", err)
	}

	got, err := db.GetLayout(ctx)
	if err != nil {
		t.Fatalf("GetLayout() failed: %v", err)
	}
	if got.SidebarWidth != 600 {
		t.Errorf("SidebarWidth = %d, want 600", got.SidebarWidth)
	}
	if string(got.GridLayout) != `[{"i":"chart"}]` {
		t.Errorf("GridLayout = %s", got.GridLayout)
	}
	if string(got.WindowState) != `{"dock":[]}` {
		t.Errorf("WindowState = %s", got.WindowState)
	}
}

func TestClampSidebarWidth(t *testing.T) {
	tests := []struct{ in, want int }{{100, 300}, {300, 300}, {450, 450}, {600, 600}, {601, 600}}
	for _, tt := range tests {
		if got := ClampSidebarWidth(tt.in); got != tt.want {
			t.Errorf("ClampSidebarWidth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
