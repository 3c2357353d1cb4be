// Package services provides service orchestration for the TUI and HTTP API.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/points-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/points-dashboard-tui/internal/config"
	"github.com/j-veylop/points-dashboard-tui/internal/db"
	"github.com/j-veylop/points-dashboard-tui/internal/logger"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/period"
	"github.com/j-veylop/points-dashboard-tui/internal/services/credentials"
	"github.com/j-veylop/points-dashboard-tui/internal/services/poe"
	"github.com/j-veylop/points-dashboard-tui/internal/services/syncer"
	"github.com/j-veylop/points-dashboard-tui/internal/stats"
)

// ErrNoConfig is returned when no usable credentials are stored.
var ErrNoConfig = errors.New("no config found")

// lowBalancePercent is the remaining-balance threshold for a notification.
const lowBalancePercent = 10.0

type (
	// SyncStartedEvent is emitted when a sync run begins.
	SyncStartedEvent struct {
		RunID string
		Auto  bool
	}

	// SyncFinishedEvent is emitted when a sync run completes.
	SyncFinishedEvent struct {
		Result *models.SyncResult
		Auto   bool
	}

	// CredentialsUpdatedEvent is emitted when the curl file was imported.
	CredentialsUpdatedEvent struct {
		Credentials models.Credentials
	}

	// UserPointsEvent is emitted when the balance was refreshed.
	UserPointsEvent struct {
		Info *models.UserPointsInfo
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SyncStartedEvent) isServiceEvent()        {}
func (SyncFinishedEvent) isServiceEvent()       {}
func (CredentialsUpdatedEvent) isServiceEvent() {}
func (UserPointsEvent) isServiceEvent()         {}
func (ErrorEvent) isServiceEvent()              {}

// Manager orchestrates services and event routing.
type Manager struct {
	database    *db.DB
	client      *poe.Client
	engine      *syncer.Engine
	autoFetch   *syncer.AutoFetcher
	credentials *credentials.Service
	cfg         *config.Config
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	notify      func(title, message string)
	lastPoints  *models.UserPointsInfo
	subscribers []chan<- ServiceEvent
	mu          sync.RWMutex
	closeOnce   sync.Once
}

// NewManager opens the database and wires the Poe client, sync engine,
// auto-fetch timer and credentials watcher. The timer is not started.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:       cfg,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		notify: func(title, message string) {
			if err := beeep.Notify(title, message, ""); err != nil {
				logger.Debug("desktop notification failed", "error", err)
			}
		},
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.client = poe.New(
		poe.WithEndpoint(cfg.PoeEndpoint),
		poe.WithTimeout(cfg.RequestTimeout),
		poe.WithPageInterval(cfg.PageInterval),
	)
	m.engine = syncer.NewEngine(m.database, m.client)
	m.autoFetch = syncer.NewAutoFetcher(m.engine, m.database, cfg.AutoFetchMaxPages)

	if cfg.CurlPath != "" {
		m.credentials, err = credentials.New(cfg.CurlPath, m.database)
		if err != nil {
			_ = m.database.Close()
			return nil, err
		}
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	var credEvents <-chan credentials.Event
	if m.credentials != nil {
		credEvents = m.credentials.Events()
	}

	for {
		select {
		case event := <-m.engine.Events():
			m.handleSyncEvent(event)

		case event := <-credEvents:
			m.handleCredentialsEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleSyncEvent(event syncer.Event) {
	switch event.Type {
	case syncer.EventSyncStarted:
		m.broadcast(SyncStartedEvent{RunID: event.RunID, Auto: event.Auto})

	case syncer.EventSyncFinished:
		m.broadcast(SyncFinishedEvent{Result: event.Result, Auto: event.Auto})
		if event.Auto && event.Result != nil && event.Result.NewRecords > 0 {
			m.notify("Poe points synced", fmt.Sprintf("%d new records", event.Result.NewRecords))
		}

	case syncer.EventSyncFailed:
		m.broadcast(ErrorEvent{Service: "sync", Error: event.Error})
	}
}

func (m *Manager) handleCredentialsEvent(event credentials.Event) {
	switch event.Type {
	case credentials.EventCredentialsUpdated:
		if event.Credentials != nil {
			m.broadcast(CredentialsUpdatedEvent{Credentials: *event.Credentials})
		}
	case credentials.EventError:
		m.broadcast(ErrorEvent{Service: "credentials", Error: event.Error})
	}
}

// checkNotifications notifies when the balance drops below the threshold.
// Only a downward crossing notifies.
func (m *Manager) checkNotifications(info *models.UserPointsInfo) {
	m.mu.Lock()
	prev := m.lastPoints
	m.lastPoints = info
	m.mu.Unlock()

	if prev == nil || info.TotalAllotment <= 0 || prev.TotalAllotment <= 0 {
		return
	}

	newPercent := float64(info.CurrentBalance) / float64(info.TotalAllotment) * 100
	oldPercent := float64(prev.CurrentBalance) / float64(prev.TotalAllotment) * 100
	if newPercent < lowBalancePercent && oldPercent >= lowBalancePercent {
		body := fmt.Sprintf("Remaining points are below 10%% (%.1f%%)", newPercent)
		m.notify("Low Poe points", body)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// StartBackground starts the auto-fetch timer per the saved config and
// imports the curl file if one is present.
func (m *Manager) StartBackground(ctx context.Context) {
	if m.credentials != nil {
		if creds, err := m.credentials.ImportFile(ctx); err != nil {
			logger.Warn("failed to import credentials file", "error", err)
		} else if creds != nil {
			logger.Info("imported credentials file", "path", m.credentials.Path())
		}
	}
	m.autoFetch.Restart(ctx)
}

// Period resolves a period offset against the saved subscription day.
func (m *Manager) Period(ctx context.Context, offset int) (models.Period, error) {
	cfg, err := m.database.GetConfig(ctx)
	if err != nil {
		return models.Period{}, err
	}
	return period.ForOffset(cfg.SubscriptionDay, offset, time.Now()), nil
}

// Records returns the stored records of a period, oldest first.
func (m *Manager) Records(ctx context.Context, offset int) ([]models.PointsRecord, models.Period, error) {
	p, err := m.Period(ctx, offset)
	if err != nil {
		return nil, models.Period{}, err
	}
	records, err := m.database.RecordsInRange(ctx, p.Start, p.End)
	if err != nil {
		return nil, p, err
	}
	return records, p, nil
}

// Series aggregates a period's records into gap-filled buckets.
func (m *Manager) Series(ctx context.Context, g models.Granularity, offset int) (models.Series, models.Period, error) {
	records, p, err := m.Records(ctx, offset)
	if err != nil {
		return models.Series{}, p, err
	}
	return aggregate.Aggregate(aggregate.FromPoints(records), g), p, nil
}

// Statistics summarises a period's records and ranks the models.
func (m *Manager) Statistics(ctx context.Context, offset int, key models.SortKey, topN int) (models.Statistics, error) {
	records, _, err := m.Records(ctx, offset)
	if err != nil {
		return models.Statistics{}, err
	}
	return stats.Calculate(stats.RecordRows(records), models.ColumnCost, models.ColumnModel, key, topN), nil
}

// LatestRecords returns the newest stored records.
func (m *Manager) LatestRecords(ctx context.Context, limit int) ([]models.PointsRecord, error) {
	return m.database.LatestRecords(ctx, limit)
}

// BotStats returns all-time usage per bot.
func (m *Manager) BotStats(ctx context.Context) ([]models.BotStat, error) {
	return m.database.BotStats(ctx)
}

// UserPoints fetches the current balance and derived usage figures.
func (m *Manager) UserPoints(ctx context.Context) (*models.UserPointsInfo, error) {
	cfg, err := m.database.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.HasCredentials() {
		return nil, ErrNoConfig
	}

	info, err := m.engine.UserPoints(ctx, cfg.Credentials())
	if err != nil {
		return nil, err
	}
	m.checkNotifications(info)
	m.broadcast(UserPointsEvent{Info: info})
	return info, nil
}

// Sync runs a sync with the saved credentials. pages of zero means no limit.
func (m *Manager) Sync(ctx context.Context, full bool, pages int) (*models.SyncResult, error) {
	cfg, err := m.database.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.HasCredentials() {
		return nil, ErrNoConfig
	}
	return m.engine.Run(ctx, syncer.Options{
		Credentials:     cfg.Credentials(),
		SubscriptionDay: cfg.SubscriptionDay,
		FullSync:        full,
		MaxPages:        pages,
	})
}

// SyncWith saves the given credentials, keeping the auto-fetch settings,
// and runs a sync with them.
func (m *Manager) SyncWith(ctx context.Context, creds models.Credentials, day int, full bool) (*models.SyncResult, error) {
	cfg, err := m.database.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Cookie = creds.Cookie
	cfg.FormKey = creds.FormKey
	cfg.TChannel = creds.TChannel
	if creds.Revision != "" {
		cfg.Revision = creds.Revision
	}
	if creds.TagID != "" {
		cfg.TagID = creds.TagID
	}
	if day > 0 {
		cfg.SubscriptionDay = period.ClampDay(day)
	}
	if err := m.database.UpsertConfig(ctx, cfg); err != nil {
		logger.Error("failed to save config during fetch", "error", err)
	}

	return m.engine.Run(ctx, syncer.Options{
		Credentials:     cfg.Credentials(),
		SubscriptionDay: cfg.SubscriptionDay,
		FullSync:        full,
	})
}

// ImportCurl parses a curl command and stores its credentials.
func (m *Manager) ImportCurl(ctx context.Context, cmd string) (models.Credentials, error) {
	return credentials.Import(ctx, m.database, cmd)
}

// Config returns the saved configuration.
func (m *Manager) Config(ctx context.Context) (models.SyncConfig, error) {
	return m.database.GetConfig(ctx)
}

// SaveConfig stores the configuration and restarts the auto-fetch timer.
func (m *Manager) SaveConfig(ctx context.Context, cfg models.SyncConfig) error {
	if err := m.database.UpsertConfig(ctx, cfg); err != nil {
		return err
	}
	m.autoFetch.Restart(ctx)
	return nil
}

// Layout returns the saved layout.
func (m *Manager) Layout(ctx context.Context) (models.Layout, error) {
	return m.database.GetLayout(ctx)
}

// SaveLayout merges a partial layout update.
func (m *Manager) SaveLayout(ctx context.Context, update models.LayoutUpdate) (models.Layout, error) {
	return m.database.SaveLayout(ctx, update)
}

// AutoFetchStatus returns the auto-fetch timer state.
func (m *Manager) AutoFetchStatus() models.AutoFetchStatus {
	return m.autoFetch.Status()
}

// SyncRunning reports whether a sync is in progress.
func (m *Manager) SyncRunning() bool {
	return m.engine.Running()
}

// Paths returns the files the manager works with.
func (m *Manager) Paths() *config.Config {
	return m.cfg
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.autoFetch.Stop()

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.credentials != nil {
			if err := m.credentials.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
