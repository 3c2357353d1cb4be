// Package credentials watches a saved curl command and keeps the stored
// Poe credentials in sync with it.
package credentials

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/points-dashboard-tui/internal/curlparse"
	"github.com/j-veylop/points-dashboard-tui/internal/logger"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

const debounceInterval = 100 * time.Millisecond

// Store persists the sync configuration.
type Store interface {
	GetConfig(ctx context.Context) (models.SyncConfig, error)
	UpsertConfig(ctx context.Context, cfg models.SyncConfig) error
}

// Event represents a credentials service event.
type Event struct {
	Error       error
	Credentials *models.Credentials
	Type        EventType
}

// EventType defines the type of credentials event.
type EventType int

const (
	// EventCredentialsUpdated indicates new credentials were saved.
	EventCredentialsUpdated EventType = iota
	// EventError indicates the file could not be read or parsed.
	EventError
)

// Service watches the curl file and imports it on every change.
type Service struct {
	store         Store
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	filePath      string
	mu            sync.Mutex
	closeOnce     sync.Once
}

// New creates the service and starts watching filePath. The file does not
// need to exist yet.
func New(filePath string, store Store) (*Service, error) {
	s := &Service{
		store:     store,
		filePath:  filePath,
		eventChan: make(chan Event, 16),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}
	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Path returns the watched file.
func (s *Service) Path() string {
	return s.filePath
}

func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so the file may be created later.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleFileChange() {
	creds, err := s.ImportFile(context.Background())
	if err != nil {
		logger.Warn("failed to import credentials", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	if creds == nil {
		return
	}
	logger.Info("credentials updated from file", "path", s.filePath)
	s.sendEvent(Event{Type: EventCredentialsUpdated, Credentials: creds})
}

// ImportFile parses the watched file and saves its credentials. A missing
// or blank file yields nil credentials and no error.
func (s *Service) ImportFile(ctx context.Context) (*models.Credentials, error) {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.filePath, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	creds, err := Import(ctx, s.store, string(data))
	if err != nil {
		return nil, err
	}
	return &creds, nil
}

// Import parses a curl command and saves the credentials, keeping the
// subscription day and auto-fetch settings already stored.
func Import(ctx context.Context, store Store, cmd string) (models.Credentials, error) {
	res, err := curlparse.Parse(cmd)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("failed to parse curl command: %w", err)
	}

	cfg, err := store.GetConfig(ctx)
	if err != nil {
		return models.Credentials{}, err
	}
	creds := res.Credentials
	cfg.Cookie = creds.Cookie
	cfg.FormKey = creds.FormKey
	cfg.TChannel = creds.TChannel
	cfg.Revision = creds.Revision
	cfg.TagID = creds.TagID

	if err := store.UpsertConfig(ctx, cfg); err != nil {
		return models.Credentials{}, err
	}
	return creds, nil
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops watching.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
