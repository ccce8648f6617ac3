// Package engine holds the pantry logic: restock prediction, expiry alerts,
// healthier-substitute matching and the expiry calendar export.
// The prediction functions are pure; "today" is always supplied by the caller.
package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/tartampluch/go-pantry/internal/config"
)

// ParseLastBought parses an ISO 8601 calendar date in the given location.
func ParseLastBought(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(config.DateLayout, value, loc)
	if err != nil {
		return time.Time{}, errors.New(config.ErrDateParse)
	}
	return t, nil
}

// FormatDate renders t as the ISO 8601 calendar date used in the document.
func FormatDate(t time.Time) string {
	return t.Format(config.DateLayout)
}

// calendarDay truncates t to midnight in its own location.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween returns the number of calendar days from a to b.
// Both dates are projected onto UTC midnights so DST shifts never turn
// a 23 or 25 hour day into an off-by-one.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// purchaseDate resolves the purchase day of item relative to today's location.
// The boolean is false when the record must be skipped.
func purchaseDate(item InventoryItem, today time.Time) (time.Time, bool) {
	bought, err := ParseLastBought(item.LastBought, today.Location())
	if err != nil {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyName, item.Name,
			config.LogKeyValue, item.LastBought)
		return time.Time{}, false
	}
	return bought, true
}
