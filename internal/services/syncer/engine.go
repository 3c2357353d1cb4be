// Package syncer pulls the Poe points history into the local store.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/j-veylop/points-dashboard-tui/internal/logger"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/period"
	"github.com/j-veylop/points-dashboard-tui/internal/services/poe"
)

// ErrSuperseded is returned by a run that was cancelled because a newer
// run started.
var ErrSuperseded = errors.New("sync superseded by a newer run")

// Reasons a run stopped paging.
const (
	StopPeriodStart = "period_start"
	StopDuplicate   = "duplicate"
	StopLastPage    = "last_page"
	StopMaxPages    = "max_pages"
)

// Store is the persistence needed by the engine.
type Store interface {
	RecordExists(ctx context.Context, id string) (bool, error)
	InsertRecord(ctx context.Context, r *models.PointsRecord) error
	UpdateRecord(ctx context.Context, r *models.PointsRecord) error
	GetConfig(ctx context.Context) (models.SyncConfig, error)
	SumSince(ctx context.Context, since int64) (int64, error)
}

// Fetcher is the remote side of a sync.
type Fetcher interface {
	PointsHistory(ctx context.Context, creds models.Credentials, cursor string) (*poe.HistoryPage, error)
	Settings(ctx context.Context, creds models.Credentials) (*models.PointsInfo, error)
	WaitPage(ctx context.Context) error
}

// EventType defines the type of sync event.
type EventType int

const (
	// EventSyncStarted indicates a run has begun.
	EventSyncStarted EventType = iota
	// EventSyncFinished indicates a run completed.
	EventSyncFinished
	// EventSyncFailed indicates a run failed.
	EventSyncFailed
)

// Event represents a sync engine event.
type Event struct {
	Error  error
	Result *models.SyncResult
	RunID  string
	Type   EventType
	Auto   bool
}

// Options control a single run.
type Options struct {
	Credentials     models.Credentials
	SubscriptionDay int
	MaxPages        int // 0 means unlimited
	FullSync        bool
	Auto            bool
}

// Engine runs syncs. At most one run is live; starting a new one cancels
// the previous run.
type Engine struct {
	store     Store
	fetcher   Fetcher
	now       func() time.Time
	eventChan chan Event
	cancel    context.CancelFunc
	currentID string
	active    int
	mu        sync.Mutex
}

// NewEngine creates a sync engine.
func NewEngine(store Store, fetcher Fetcher) *Engine {
	return &Engine{
		store:     store,
		fetcher:   fetcher,
		now:       time.Now,
		eventChan: make(chan Event, 32),
	}
}

// Events returns the event channel.
func (e *Engine) Events() <-chan Event {
	return e.eventChan
}

// Running reports whether any run is in progress.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active > 0
}

// Run pages through the points history from newest to oldest and stores
// every entry of the current subscription period.
func (e *Engine) Run(ctx context.Context, opts Options) (*models.SyncResult, error) {
	runID := uuid.NewString()
	log := logger.With("run_id", runID)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	if e.cancel != nil {
		logger.Info("cancelling previous sync", "run_id", e.currentID)
		e.cancel()
	}
	e.cancel = cancel
	e.currentID = runID
	e.active++
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.active--
		if e.currentID == runID {
			e.cancel = nil
			e.currentID = ""
		}
		e.mu.Unlock()
	}()

	e.sendEvent(Event{Type: EventSyncStarted, RunID: runID, Auto: opts.Auto})

	result, err := e.run(runCtx, log, runID, opts)
	if e.superseded(runID) {
		if err != nil {
			return result, fmt.Errorf("%w: %w", ErrSuperseded, err)
		}
		return result, ErrSuperseded
	}
	if err != nil {
		log.Error("sync failed", "error", err)
		e.sendEvent(Event{Type: EventSyncFailed, RunID: runID, Auto: opts.Auto, Error: err, Result: result})
		return result, err
	}

	log.Info("sync finished",
		"new", result.NewRecords,
		"updated", result.UpdatedRecords,
		"pages", result.Pages,
		"stopped_by", result.StoppedBy,
	)
	e.sendEvent(Event{Type: EventSyncFinished, RunID: runID, Auto: opts.Auto, Result: result})
	return result, nil
}

func (e *Engine) superseded(runID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentID != runID
}

func (e *Engine) run(ctx context.Context, log *slog.Logger, runID string, opts Options) (*models.SyncResult, error) {
	result := &models.SyncResult{RunID: runID}
	start := period.Current(opts.SubscriptionDay, e.now()).Start

	cursor := ""
	for {
		if err := e.fetcher.WaitPage(ctx); err != nil {
			return finish(result), err
		}

		page, err := e.fetcher.PointsHistory(ctx, opts.Credentials, cursor)
		if err != nil {
			return finish(result), fmt.Errorf("failed to fetch page %d: %w", result.Pages+1, err)
		}
		result.Pages++

		if stop := e.storePage(ctx, log, page.Nodes, start, opts.FullSync, result); stop != "" {
			result.StoppedBy = stop
			break
		}
		if !page.HasNextPage {
			result.StoppedBy = StopLastPage
			break
		}
		if opts.MaxPages > 0 && result.Pages >= opts.MaxPages {
			result.StoppedBy = StopMaxPages
			break
		}
		cursor = page.EndCursor
	}

	return finish(result), nil
}

// storePage writes the nodes of one page and returns a stop reason when
// paging should end.
func (e *Engine) storePage(ctx context.Context, log *slog.Logger, nodes []poe.Node, start int64, full bool, result *models.SyncResult) string {
	for _, node := range nodes {
		if node.CreationTime <= start {
			return StopPeriodStart
		}

		exists, err := e.store.RecordExists(ctx, node.ID)
		if err != nil {
			log.Error("failed to check record", "id", node.ID, "error", err)
			continue
		}
		if exists && !full {
			return StopDuplicate
		}

		rec := node.Record()
		if exists {
			if err := e.store.UpdateRecord(ctx, &rec); err != nil {
				log.Error("failed to update record", "id", node.ID, "error", err)
				continue
			}
			result.UpdatedRecords++
			continue
		}
		if err := e.store.InsertRecord(ctx, &rec); err != nil {
			log.Error("failed to insert record", "id", node.ID, "error", err)
			continue
		}
		result.NewRecords++
	}
	return ""
}

func finish(r *models.SyncResult) *models.SyncResult {
	r.Message = Message(r.NewRecords, r.UpdatedRecords)
	return r
}

// Message formats the user-facing summary of a run.
func Message(newRecords, updated int) string {
	msg := fmt.Sprintf("Successfully fetched %d new records", newRecords)
	if updated > 0 {
		msg += fmt.Sprintf(", updated %d existing records", updated)
	}
	return msg
}

// sendEvent sends an event to the event channel non-blocking.
func (e *Engine) sendEvent(event Event) {
	select {
	case e.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-e.eventChan:
		default:
		}
		select {
		case e.eventChan <- event:
		default:
		}
	}
}
