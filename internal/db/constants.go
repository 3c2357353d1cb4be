package db

// SQL fragments shared by the points_history queries.
const (
	sqlRecordColumns = "id, point_cost, creation_time, bot_name, bot_id, cursor, created_at"
	sqlTimeLayout    = "2006-01-02 15:04:05"
	// latestConfigClause selects the most recent config or layout row.
	latestConfigClause = "ORDER BY id DESC LIMIT 1"
)
