package app

import (
	"time"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/services"
	"github.com/j-veylop/points-dashboard-tui/internal/window"
)

// TickMsg is sent periodically to expire notifications and refresh the
// auto-fetch status.
type TickMsg struct {
	Time time.Time
}

// DataLoadedMsg carries the data loaded for one reload request.
type DataLoadedMsg struct {
	Seq   uint64
	Data  DataSnapshot
	Error error
}

// UserPointsLoadedMsg carries the result of a balance lookup.
type UserPointsLoadedMsg struct {
	Info  *models.UserPointsInfo
	Error error
}

// SyncRequestMsg asks the application to start a sync.
type SyncRequestMsg struct {
	Full bool
}

// SyncResultMsg is the return value of a sync started from the UI.
type SyncResultMsg struct {
	Result *models.SyncResult
	Error  error
}

// ViewChangedMsg asks the application to switch view settings and reload.
type ViewChangedMsg struct {
	View ViewSettings
}

// RefreshMsg asks the application to reload the current view.
type RefreshMsg struct{}

// LayoutLoadedMsg carries the saved window layout.
type LayoutLoadedMsg struct {
	Snapshot *window.Snapshot
	Error    error
}

// LayoutChangedMsg is sent by a tab after it changed a widget state.
type LayoutChangedMsg struct{}

// LayoutSavedMsg reports the outcome of persisting the layout.
type LayoutSavedMsg struct {
	Error error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
