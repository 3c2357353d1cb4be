// Package config contains everything related to configuration
package config

// Poe GraphQL endpoint and persisted query identifiers.
const (
	DefaultPoeEndpoint = "https://poe.com/api/gql_POST"
	PoeOrigin          = "https://poe.com"
	PoeReferer         = "https://poe.com/points_history"
	PoeUserAgent       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	PointsHistoryQueryName = "PointsHistoryPageColumnViewerPaginationQuery"
	PointsHistoryQueryHash = "9b68fe8ea0017e5d7701c93a5db8323136f9cb023d514f8595ae0dde220be6d1"
	SettingsQueryName      = "settingsPageQuery"
	SettingsQueryHash      = "39ca34ece084fd810ccc8394942a2a584651433a57e7455ae80546a2e7893b5f"

	// PointsHistoryPageSize is the number of entries requested per page.
	PointsHistoryPageSize = 20
)

// Defaults for credentials the user rarely needs to change.
const (
	DefaultRevision = "59988163982a4ac4be7c7e7784f006dc48cafcf5"
	DefaultTagID    = "8a0df086c2034f5e97dcb01c426029ee"
)

// Defaults for the persisted sync settings.
const (
	DefaultSubscriptionDay   = 1
	DefaultAutoFetchInterval = 30 // minutes
	DefaultSidebarWidth      = 400
	MinSidebarWidth          = 300
	MaxSidebarWidth          = 600
)
