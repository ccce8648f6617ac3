package engine

import "github.com/tartampluch/go-pantry/internal/config"

// InventoryItem is one grocery record as persisted in the pantry document.
// Name is the identity key and compares case-insensitively.
type InventoryItem struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	ShelfLifeDays int    `json:"shelf_life_days"`

	// LastBought is an ISO 8601 calendar date (YYYY-MM-DD).
	// Records whose date does not parse are ignored by the engine.
	LastBought string `json:"last_bought,omitempty"`
}

// Urgency is the coarse restock tier attached to a Suggestion.
type Urgency string

const (
	UrgencyMedium Urgency = config.UrgencyMedium
	UrgencyHigh   Urgency = config.UrgencyHigh
)

// Suggestion recommends restocking an item.
type Suggestion struct {
	Item       string  `json:"item"`
	Reason     string  `json:"reason"`
	Urgency    Urgency `json:"urgency"`
	DaysPassed int     `json:"days_passed"`
}

// AlertStatus classifies an ExpiryAlert.
type AlertStatus string

const (
	StatusCritical AlertStatus = config.StatusCritical
	StatusExpired  AlertStatus = config.StatusExpired
)

// ExpiryAlert flags an item close to or past its expiry date.
// DaysLeft is negative once the item has expired.
type ExpiryAlert struct {
	Item     string      `json:"item"`
	DaysLeft int         `json:"days_left"`
	Status   AlertStatus `json:"status"`
}

// ReasonFormatter renders the human-readable reason of a Suggestion.
// It allows the service layer to inject localized strings into the engine.
type ReasonFormatter func(name string, daysPassed, shelfLifeDays int, urgency Urgency) string
