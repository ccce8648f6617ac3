package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-pantry/internal/config"
)

// CalendarOptions parameterizes the expiry calendar export.
type CalendarOptions struct {
	// Now stamps the events (DTSTAMP) and decides the local calendar.
	Now time.Time

	// ReminderTrigger is an ISO8601 duration (e.g. "-P1D"). Empty disables alarms.
	ReminderTrigger string

	// CalendarName overrides the X-WR-CALNAME header.
	CalendarName string

	// FormatSummary and FormatAlarm allow the service layer to inject localized strings.
	FormatSummary func(name string) string
	FormatAlarm   func(name string) string
}

// BuildExpiryCalendar renders an iCalendar feed with one all-day event per item,
// placed on its expiry date. Items with an invalid last_bought are skipped.
// It returns the encoded feed and the number of events.
func BuildExpiryCalendar(ctx context.Context, items []InventoryItem, opts CalendarOptions) ([]byte, int, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := calendarDay(now)

	calName := opts.CalendarName
	if calName == "" {
		calName = config.ICalCalName
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, calName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		expiry, ok := ExpiryDate(item, today)
		if !ok {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, itemUID(item), config.ICalDomain))
		event.Props.Set(dtStampProp)

		summary := fmt.Sprintf(config.FallbackExpirySummary, item.Name)
		if opts.FormatSummary != nil {
			summary = opts.FormatSummary(item.Name)
		}
		event.Props.SetText(config.PropSummary, summary)

		if item.Category != "" {
			event.Props.SetText(config.PropCategories, item.Category)
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(expiry)
		event.Props.Set(dtStartProp)

		if opts.ReminderTrigger != "" {
			description := fmt.Sprintf(config.FallbackExpiryAlarm, item.Name)
			if opts.FormatAlarm != nil {
				description = opts.FormatAlarm(item.Name)
			}
			addAlarm(event, opts.ReminderTrigger, description)
		}

		cal.Children = append(cal.Children, event.Component)
	}

	// An encoder refuses a calendar without components; clients still expect a valid feed.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgCalendarBuilt,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyEvents, len(cal.Children))
	return buf.Bytes(), len(cal.Children), nil
}

// itemUID is stable across refreshes as long as the item is not re-bought.
func itemUID(item InventoryItem) string {
	input := fmt.Sprintf(config.FormatHashInput, NormalizeName(item.Name), item.LastBought, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
