package engine

import (
	"time"

	"github.com/tartampluch/go-pantry/internal/config"
)

// ExpiryDate returns last_bought + shelf life, or false if the date is invalid.
func ExpiryDate(item InventoryItem, today time.Time) (time.Time, bool) {
	bought, ok := purchaseDate(item, today)
	if !ok {
		return time.Time{}, false
	}
	return bought.AddDate(0, 0, item.ShelfLifeDays), true
}

// CheckExpiringSoon returns an alert for every item expiring within
// CriticalWindowDays (Critical) or already past its expiry date (Expired).
// Items with an unparseable last_bought are skipped. Output follows input order.
func CheckExpiringSoon(items []InventoryItem, today time.Time) []ExpiryAlert {
	today = calendarDay(today)

	var out []ExpiryAlert
	for _, item := range items {
		expiry, ok := ExpiryDate(item, today)
		if !ok {
			continue
		}

		daysLeft := daysBetween(today, expiry)

		var status AlertStatus
		switch {
		case daysLeft < 0:
			status = StatusExpired
		case daysLeft <= config.CriticalWindowDays:
			status = StatusCritical
		default:
			continue
		}

		out = append(out, ExpiryAlert{
			Item:     item.Name,
			DaysLeft: daysLeft,
			Status:   status,
		})
	}
	return out
}
