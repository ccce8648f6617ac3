package engine

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-pantry/internal/config"
)

// PredictNeeds returns a restock Suggestion for every item whose elapsed time
// since purchase has reached 80% of its shelf life.
// Items with an unparseable last_bought are skipped. Output follows input order.
// format may be nil, in which case the English fallback reason is used.
func PredictNeeds(items []InventoryItem, today time.Time, format ReasonFormatter) []Suggestion {
	today = calendarDay(today)
	if format == nil {
		format = fallbackReason
	}

	var out []Suggestion
	for _, item := range items {
		bought, ok := purchaseDate(item, today)
		if !ok {
			continue
		}

		daysPassed := daysBetween(bought, today)
		threshold := float64(item.ShelfLifeDays) * config.RestockThreshold
		if float64(daysPassed) < threshold {
			continue
		}

		urgency := UrgencyMedium
		if daysPassed > item.ShelfLifeDays {
			urgency = UrgencyHigh
		}

		out = append(out, Suggestion{
			Item:       item.Name,
			Reason:     format(item.Name, daysPassed, item.ShelfLifeDays, urgency),
			Urgency:    urgency,
			DaysPassed: daysPassed,
		})
	}
	return out
}

func fallbackReason(_ string, daysPassed, shelfLifeDays int, urgency Urgency) string {
	return fmt.Sprintf(config.FallbackReason, daysPassed, shelfLifeDays, urgency)
}
