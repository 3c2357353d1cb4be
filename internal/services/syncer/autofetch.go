package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/points-dashboard-tui/internal/config"
	"github.com/j-veylop/points-dashboard-tui/internal/logger"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

// Results recorded by the auto-fetch timer.
const (
	ResultDisabled      = "Disabled or no config"
	ResultInvalidConfig = "Invalid config"
)

// AutoFetcher periodically runs an incremental sync while enabled.
type AutoFetcher struct {
	engine   *Engine
	store    Store
	ticker   *time.Ticker
	stopChan chan struct{}
	status   models.AutoFetchStatus
	maxPages int
	mu       sync.Mutex
}

// NewAutoFetcher creates a stopped auto-fetch timer. maxPages bounds each
// automatic run; zero uses the default of 10.
func NewAutoFetcher(engine *Engine, store Store, maxPages int) *AutoFetcher {
	if maxPages <= 0 {
		maxPages = 10
	}
	return &AutoFetcher{
		engine:   engine,
		store:    store,
		maxPages: maxPages,
	}
}

// Start (re)starts the timer with the given interval in minutes.
func (a *AutoFetcher) Start(minutes int) {
	if minutes <= 0 {
		minutes = config.DefaultAutoFetchInterval
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()

	ticker := time.NewTicker(time.Duration(minutes) * time.Minute)
	stop := make(chan struct{})
	a.ticker = ticker
	a.stopChan = stop
	a.status.TimerActive = true
	a.status.IntervalMinutes = minutes

	go a.loop(ticker, stop)
	logger.Info("auto fetch timer started", "interval_minutes", minutes)
}

// Stop halts the timer. It is safe to call when already stopped.
func (a *AutoFetcher) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ticker != nil {
		logger.Info("auto fetch timer stopped")
	}
	a.stopLocked()
}

func (a *AutoFetcher) stopLocked() {
	if a.ticker != nil {
		a.ticker.Stop()
		a.ticker = nil
	}
	if a.stopChan != nil {
		close(a.stopChan)
		a.stopChan = nil
	}
	a.status.TimerActive = false
}

// Restart reads the saved config and starts or stops the timer to match.
func (a *AutoFetcher) Restart(ctx context.Context) {
	cfg, err := a.store.GetConfig(ctx)
	if err != nil || !cfg.AutoFetchEnabled {
		a.Stop()
		return
	}
	a.Start(cfg.AutoFetchInterval)
}

// Status returns a snapshot of the timer state.
func (a *AutoFetcher) Status() models.AutoFetchStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.status
	if st.LastFetchTime != nil {
		t := *st.LastFetchTime
		st.LastFetchTime = &t
	}
	return st
}

func (a *AutoFetcher) loop(ticker *time.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			a.Fetch(context.Background())
		case <-stop:
			return
		}
	}
}

// Fetch performs one automatic sync. A tick that arrives while any sync is
// in progress is skipped.
func (a *AutoFetcher) Fetch(ctx context.Context) {
	a.mu.Lock()
	if a.status.IsRunning || a.engine.Running() {
		a.mu.Unlock()
		logger.Info("auto fetch already in progress, skipping")
		return
	}
	now := time.Now()
	a.status.IsRunning = true
	a.status.LastFetchTime = &now
	a.mu.Unlock()

	result := a.fetch(ctx)

	a.mu.Lock()
	a.status.IsRunning = false
	a.status.LastFetchResult = result
	a.mu.Unlock()
}

func (a *AutoFetcher) fetch(ctx context.Context) string {
	cfg, err := a.store.GetConfig(ctx)
	if err != nil || !cfg.AutoFetchEnabled {
		logger.Info("auto fetch disabled or no config")
		return ResultDisabled
	}
	if cfg.Cookie == "" || cfg.FormKey == "" || cfg.TChannel == "" {
		logger.Warn("auto fetch: invalid config")
		return ResultInvalidConfig
	}

	res, err := a.engine.Run(ctx, Options{
		Credentials:     cfg.Credentials(),
		SubscriptionDay: cfg.SubscriptionDay,
		MaxPages:        a.maxPages,
		Auto:            true,
	})
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Success: %d new records", res.NewRecords)
}
