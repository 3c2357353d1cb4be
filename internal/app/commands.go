package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/points-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/services"
	"github.com/j-veylop/points-dashboard-tui/internal/stats"
	"github.com/j-veylop/points-dashboard-tui/internal/window"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	loadTimeout = 15 * time.Second
)

// Backend is the part of the service manager the UI talks to.
type Backend interface {
	Records(ctx context.Context, offset int) ([]models.PointsRecord, models.Period, error)
	BotStats(ctx context.Context) ([]models.BotStat, error)
	Config(ctx context.Context) (models.SyncConfig, error)
	AutoFetchStatus() models.AutoFetchStatus
	UserPoints(ctx context.Context) (*models.UserPointsInfo, error)
	Sync(ctx context.Context, full bool, pages int) (*models.SyncResult, error)
	Layout(ctx context.Context) (models.Layout, error)
	SaveLayout(ctx context.Context, update models.LayoutUpdate) (models.Layout, error)
	Subscribe() (chan services.ServiceEvent, tea.Cmd)
}

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadDataCmd loads the records of the selected period and derives the
// chart series and statistics from them.
func loadDataCmd(b Backend, seq uint64, v ViewSettings) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		records, p, err := b.Records(ctx, v.Offset)
		if err != nil {
			return DataLoadedMsg{Seq: seq, Error: fmt.Errorf("failed to load records: %w", err)}
		}
		botStats, err := b.BotStats(ctx)
		if err != nil {
			return DataLoadedMsg{Seq: seq, Error: fmt.Errorf("failed to load bot stats: %w", err)}
		}
		cfg, err := b.Config(ctx)
		if err != nil {
			return DataLoadedMsg{Seq: seq, Error: fmt.Errorf("failed to load config: %w", err)}
		}

		rows := stats.RecordRows(records)
		return DataLoadedMsg{
			Seq: seq,
			Data: DataSnapshot{
				Series:     aggregate.Aggregate(aggregate.FromPoints(records), v.Granularity),
				Period:     p,
				Records:    records,
				Statistics: stats.Calculate(rows, models.ColumnCost, models.ColumnModel, models.SortByCost, 0),
				BotStats:   botStats,
				Config:     cfg,
				AutoFetch:  b.AutoFetchStatus(),
			},
		}
	}
}

func loadUserPointsCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		info, err := b.UserPoints(ctx)
		return UserPointsLoadedMsg{Info: info, Error: err}
	}
}

// syncCmd runs a sync with the saved credentials. The engine cancels any
// run still in flight.
func syncCmd(b Backend, full bool) tea.Cmd {
	return func() tea.Msg {
		result, err := b.Sync(context.Background(), full, 0)
		return SyncResultMsg{Result: result, Error: err}
	}
}

func loadLayoutCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		layout, err := b.Layout(ctx)
		if err != nil {
			return LayoutLoadedMsg{Error: err}
		}
		snap, err := decodeSnapshot(layout.WindowState)
		return LayoutLoadedMsg{Snapshot: snap, Error: err}
	}
}

// decodeSnapshot returns nil for a layout that never stored window state.
func decodeSnapshot(raw json.RawMessage) (*window.Snapshot, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var snap window.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode window state: %w", err)
	}
	return &snap, nil
}

func saveLayoutCmd(b Backend, snap window.Snapshot) tea.Cmd {
	return func() tea.Msg {
		raw, err := json.Marshal(snap)
		if err != nil {
			return LayoutSavedMsg{Error: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		_, err = b.SaveLayout(ctx, models.LayoutUpdate{WindowState: raw})
		return LayoutSavedMsg{Error: err}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(b Backend) tea.Cmd {
	ch, _ := b.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// ChangeView returns a command asking the application to switch views.
func ChangeView(v ViewSettings) tea.Cmd {
	return func() tea.Msg { return ViewChangedMsg{View: v} }
}

// RequestSync returns a command asking the application to start a sync.
func RequestSync(full bool) tea.Cmd {
	return func() tea.Msg { return SyncRequestMsg{Full: full} }
}

// LayoutChanged returns a command asking the application to persist the
// widget layout.
func LayoutChanged() tea.Cmd {
	return func() tea.Msg { return LayoutChangedMsg{} }
}

// Notify returns a command that shows a notification from a tab.
func Notify(t NotificationType, message string) tea.Cmd {
	d := DefaultNotificationDuration
	switch t {
	case NotificationError:
		d = LongNotificationDuration
	case NotificationInfo:
		d = QuickNotificationDuration
	}
	return notifyCmd(t, message, d)
}
