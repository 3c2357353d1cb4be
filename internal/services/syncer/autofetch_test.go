package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

func enabledConfig() models.SyncConfig {
	return models.SyncConfig{
		Cookie:            "c",
		FormKey:           "f",
		TChannel:          "t",
		SubscriptionDay:   1,
		AutoFetchInterval: 15,
		AutoFetchEnabled:  true,
	}
}

func TestAutoFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name    string
		cfg     models.SyncConfig
		fetcher *fakeFetcher
		want    string
	}{
		{
			name:    "Disabled",
			cfg:     models.SyncConfig{Cookie: "c", FormKey: "f", TChannel: "t"},
			fetcher: &fakeFetcher{pages: twoPages()},
			want:    ResultDisabled,
		},
		{
			name: "InvalidConfig",
			cfg: func() models.SyncConfig {
				c := enabledConfig()
				c.TChannel = ""
				return c
			}(),
			fetcher: &fakeFetcher{pages: twoPages()},
			want:    ResultInvalidConfig,
		},
		{
			name:    "Success",
			cfg:     enabledConfig(),
			fetcher: &fakeFetcher{pages: twoPages()},
			want:    "Success: 3 new records",
		},
		{
			name:    "Error",
			cfg:     enabledConfig(),
			fetcher: &fakeFetcher{err: errors.New("boom")},
			want:    "Error: failed to fetch page 1: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.cfg = tt.cfg
			engine := newTestEngine(store, tt.fetcher)
			af := NewAutoFetcher(engine, store, 0)

			af.Fetch(context.Background())

			st := af.Status()
			if st.LastFetchResult != tt.want {
				t.Errorf("LastFetchResult = %q, want %q", st.LastFetchResult, tt.want)
			}
			if st.LastFetchTime == nil {
				t.Error("LastFetchTime should be set")
			}
			if st.IsRunning {
				t.Error("IsRunning should be false after the fetch")
			}
		})
	}
}

func TestAutoFetcher_BoundsPages(t *testing.T) {
	store := newFakeStore()
	store.cfg = enabledConfig()
	fetcher := &fakeFetcher{pages: twoPages()}
	af := NewAutoFetcher(newTestEngine(store, fetcher), store, 1)

	af.Fetch(context.Background())

	if len(fetcher.cursors) != 1 {
		t.Errorf("fetched %d pages, want 1", len(fetcher.cursors))
	}
}

func TestAutoFetcher_StartStopRestart(t *testing.T) {
	store := newFakeStore()
	af := NewAutoFetcher(newTestEngine(store, &fakeFetcher{}), store, 0)

	af.Start(0)
	st := af.Status()
	if !st.TimerActive || st.IntervalMinutes != 30 {
		t.Errorf("after Start(0): %+v", st)
	}

	af.Stop()
	af.Stop()
	if af.Status().TimerActive {
		t.Error("timer should be stopped")
	}

	store.cfg = enabledConfig()
	af.Restart(context.Background())
	st = af.Status()
	if !st.TimerActive || st.IntervalMinutes != 15 {
		t.Errorf("after Restart with enabled config: %+v", st)
	}

	store.cfg.AutoFetchEnabled = false
	af.Restart(context.Background())
	if af.Status().TimerActive {
		t.Error("Restart with disabled config should stop the timer")
	}
}
