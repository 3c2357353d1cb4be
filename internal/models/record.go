// Package models defines data structures and domain types.
package models

import "time"

// UsageRecord is a raw usage entry fed to the aggregator. Cost is kept
// loosely typed because callers pass numbers or formatted strings.
type UsageRecord struct {
	Timestamp string `json:"timestamp"`
	Cost      any    `json:"cost"`
	Model     string `json:"model,omitempty"`
}

// PointsRecord is one entry of the Poe points history as stored locally.
type PointsRecord struct {
	ID           string    `json:"id"`
	PointCost    int       `json:"point_cost"`
	CreationTime int64     `json:"creation_time"` // microseconds since epoch
	BotName      string    `json:"bot_name"`
	BotID        string    `json:"bot_id"`
	Cursor       string    `json:"cursor"`
	CreatedAt    time.Time `json:"created_at"`
}

// Time returns the creation time of the record.
func (r PointsRecord) Time() time.Time {
	return time.UnixMicro(r.CreationTime)
}

// Row is an arbitrary keyed row used by the statistics helpers.
type Row map[string]any

// Column names used when records are presented as rows.
const (
	ColumnID        = "id"
	ColumnModel     = "model_name"
	ColumnBotID     = "model_id"
	ColumnCost      = "point_cost"
	ColumnTimestamp = "timestamp"
	ColumnCreatedAt = "creation_time"
	ColumnDate      = "date"
	ColumnTime      = "time"
)

// TableColumns is the default column order for record tables.
var TableColumns = []string{
	ColumnID,
	ColumnModel,
	ColumnBotID,
	ColumnCost,
	ColumnCreatedAt,
	ColumnDate,
	ColumnTime,
}

// ToRow converts a record into a table row.
func (r PointsRecord) ToRow() Row {
	row := Row{
		ColumnID:        r.ID,
		ColumnModel:     r.BotName,
		ColumnBotID:     r.BotID,
		ColumnCost:      float64(r.PointCost),
		ColumnTimestamp: float64(r.CreationTime),
	}
	if r.ID == "" {
		row[ColumnID] = "-"
	}
	if r.BotName == "" {
		row[ColumnModel] = "Unknown"
	}
	if r.BotID == "" {
		row[ColumnBotID] = "-"
	}
	if r.CreationTime > 0 {
		t := r.Time()
		row[ColumnCreatedAt] = t.UTC().Format(time.RFC3339)
		row[ColumnDate] = t.Format("2006-01-02")
		row[ColumnTime] = t.Format("15:04:05")
	} else {
		row[ColumnCreatedAt] = "-"
		row[ColumnDate] = "-"
		row[ColumnTime] = "-"
	}
	return row
}

// BotStat is the total usage of a single bot.
type BotStat struct {
	BotName   string `json:"bot_name"`
	TotalCost int    `json:"total_cost"`
	Count     int    `json:"count"`
}
