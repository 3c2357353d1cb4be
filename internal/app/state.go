// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"strconv"
	"sync"
	"time"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/window"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

// LoadingNotificationID is the fixed ID for loading notifications.
const LoadingNotificationID = "__loading__"

const maxNotifications = 10

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// ViewSettings selects what the dashboard shows.
type ViewSettings struct {
	Granularity models.Granularity
	Mode        models.ViewMode
	Offset      int // billing periods back from the current one, never positive
}

// DataSnapshot is everything loaded for one ViewSettings.
type DataSnapshot struct {
	Series     models.Series
	Period     models.Period
	Records    []models.PointsRecord
	Statistics models.Statistics
	BotStats   []models.BotStat
	Config     models.SyncConfig
	AutoFetch  models.AutoFetchStatus
}

// State is shared between the application model and its tabs.
type State struct {
	mu sync.RWMutex

	view    ViewSettings
	data    DataSnapshot
	dataSeq uint64
	loaded  bool

	userPoints    *models.UserPointsInfo
	userPointsErr error

	syncing     bool
	lastUpdated time.Time

	windows *window.Manager

	notifications   []Notification
	notificationSeq int
}

// NewState creates the shared state with every widget visible.
func NewState(g models.Granularity) *State {
	return &State{
		view:          ViewSettings{Granularity: g},
		windows:       window.NewManager(),
		notifications: make([]Notification, 0),
	}
}

// View returns the current view settings.
func (s *State) View() ViewSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetView replaces the view settings and returns the sequence number a
// reload for them must carry. A positive offset is clamped to zero.
func (s *State) SetView(v ViewSettings) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v.Offset = min(v.Offset, 0)
	s.view = v
	s.dataSeq++
	return s.dataSeq
}

// NextSeq starts a reload of the current view settings.
func (s *State) NextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataSeq++
	return s.dataSeq
}

// Seq returns the sequence number of the latest reload request.
func (s *State) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataSeq
}

// ApplyData stores data loaded for seq. Results of an outdated request
// are dropped and false is returned.
func (s *State) ApplyData(seq uint64, data DataSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.dataSeq {
		return false
	}
	s.data = data
	s.loaded = true
	s.lastUpdated = time.Now()
	return true
}

// Loaded reports whether any data has been applied yet.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Data returns the most recently applied snapshot.
func (s *State) Data() DataSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// SetAutoFetch refreshes the timer status without a full reload.
func (s *State) SetAutoFetch(status models.AutoFetchStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.AutoFetch = status
}

// SetUserPoints stores the result of a balance lookup.
func (s *State) SetUserPoints(info *models.UserPointsInfo, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.userPointsErr = err
		return
	}
	s.userPoints = info
	s.userPointsErr = nil
}

// UserPoints returns the last known balance and the last lookup error.
// A failed lookup keeps the previous balance.
func (s *State) UserPoints() (*models.UserPointsInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userPoints, s.userPointsErr
}

// SetSyncing records whether a sync is in flight.
func (s *State) SetSyncing(syncing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = syncing
}

// Syncing reports whether a sync is in flight.
func (s *State) Syncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncing
}

// LastUpdated returns when data was last applied.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Windows returns the widget window manager.
func (s *State) Windows() *window.Manager {
	return s.windows
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := "n" + strconv.Itoa(s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// Notifications returns a copy of all active notifications.
func (s *State) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification shows or updates the single loading notification.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}
