package models

import (
	"encoding/json"
	"time"
)

// Credentials are the request headers needed to talk to the Poe API.
type Credentials struct {
	Cookie   string `json:"cookie"`
	FormKey  string `json:"formkey"`
	TChannel string `json:"tchannel"`
	Revision string `json:"revision,omitempty"`
	TagID    string `json:"tag_id,omitempty"`
}

// IsComplete reports whether the mandatory fields are present.
func (c Credentials) IsComplete() bool {
	return c.Cookie != "" && c.FormKey != ""
}

// SyncConfig is the single persisted configuration row.
type SyncConfig struct {
	UpdatedAt         time.Time `json:"updated_at"`
	Cookie            string    `json:"cookie"`
	FormKey           string    `json:"formkey"`
	TChannel          string    `json:"tchannel"`
	Revision          string    `json:"revision"`
	TagID             string    `json:"tag_id"`
	SubscriptionDay   int       `json:"subscription_day"`
	AutoFetchInterval int       `json:"auto_fetch_interval"` // minutes
	AutoFetchEnabled  bool      `json:"auto_fetch_enabled"`
}

// Credentials extracts the API credentials from the config.
func (c SyncConfig) Credentials() Credentials {
	return Credentials{
		Cookie:   c.Cookie,
		FormKey:  c.FormKey,
		TChannel: c.TChannel,
		Revision: c.Revision,
		TagID:    c.TagID,
	}
}

// HasCredentials reports whether a sync can be attempted.
func (c SyncConfig) HasCredentials() bool {
	return c.Credentials().IsComplete()
}

// Layout is the persisted dashboard layout. GridLayout and WindowState are
// opaque JSON documents owned by their producers.
type Layout struct {
	GridLayout   json.RawMessage `json:"grid_layout"`
	WindowState  json.RawMessage `json:"window_state"`
	SidebarWidth int             `json:"sidebar_width"`
}

// LayoutUpdate is a partial layout change; nil fields are left untouched.
type LayoutUpdate struct {
	SidebarWidth *int            `json:"sidebar_width"`
	GridLayout   json.RawMessage `json:"grid_layout"`
	WindowState  json.RawMessage `json:"window_state"`
}

// AutoFetchStatus reports the state of the background fetch timer.
type AutoFetchStatus struct {
	LastFetchTime   *time.Time `json:"last_fetch_time"`
	LastFetchResult string     `json:"last_fetch_result"`
	IntervalMinutes int        `json:"interval_minutes"`
	IsRunning       bool       `json:"is_running"`
	TimerActive     bool       `json:"timer_active"`
}

// SyncResult is the outcome of one sync run.
type SyncResult struct {
	RunID          string `json:"run_id"`
	Message        string `json:"message"`
	NewRecords     int    `json:"new_records"`
	UpdatedRecords int    `json:"updated_records"`
	Pages          int    `json:"pages"`
	StoppedBy      string `json:"stopped_by"`
}

// PointsInfo is the subscription state reported by the settings query.
type PointsInfo struct {
	SubscriptionProduct string `json:"subscription_product"`
	TotalAllotment      int64  `json:"total_allotment"`
	CurrentBalance      int64  `json:"current_balance"`
	NextGrantTime       int64  `json:"next_grant_time"` // microseconds
	ExpiresTime         int64  `json:"expires_time"`    // microseconds
}

// UserPointsInfo extends PointsInfo with derived usage figures.
type UserPointsInfo struct {
	PointsInfo
	UsedPoints      int64   `json:"used_points"`
	UsagePercentage float64 `json:"usage_percentage"`
	AvgPerDay       int64   `json:"avg_per_day"`
	RemainingDays   int64   `json:"remaining_days"`
}

// Period is a half-open billing period [Start, End) in microseconds.
type Period struct {
	Label  string `json:"label"`
	Start  int64  `json:"start"`
	End    int64  `json:"end"`
	Offset int    `json:"offset"`
}

// Contains reports whether a microsecond timestamp falls within the period.
func (p Period) Contains(us int64) bool {
	return us >= p.Start && us < p.End
}
