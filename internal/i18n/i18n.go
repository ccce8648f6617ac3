// Package i18n renders the user-facing strings of the pantry in the
// languages shipped under locales/.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-pantry/internal/config"
	"github.com/tartampluch/go-pantry/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// Catalog holds every embedded translation.
type Catalog struct {
	bundle    *goi18n.Bundle
	languages []string
	fallback  string
}

// Load builds the catalog from the embedded locale files.
// fallback is the language used when a request names none we know.
func Load(fallback string) (*Catalog, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		detected = append(detected, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	if !slices.Contains(detected, fallback) {
		fallback = config.DefaultLanguage
	}
	return &Catalog{bundle: bundle, languages: detected, fallback: fallback}, nil
}

// Languages lists the language codes found in the embedded files.
func (c *Catalog) Languages() []string {
	return slices.Clone(c.languages)
}

// Translator returns a Translator for the first supported entry of prefs.
// Entries may be plain codes ("fr") or Accept-Language header values.
func (c *Catalog) Translator(prefs ...string) *Translator {
	langs := make([]string, 0, len(prefs)+1)
	for _, p := range prefs {
		if p != "" {
			langs = append(langs, p)
		}
	}
	langs = append(langs, c.fallback)
	return &Translator{localizer: goi18n.NewLocalizer(c.bundle, langs...)}
}

// Translator renders messages in one resolved language.
// A nil Translator, or a missing key, yields the built-in English text.
type Translator struct {
	localizer *goi18n.Localizer
}

// Msg translates key with the given template data.
// The boolean is false when no translation exists.
func (t *Translator) Msg(key string, data map[string]any) (string, bool) {
	if t == nil || t.localizer == nil {
		return "", false
	}
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return "", false
	}
	return msg, true
}

// Reason explains a restock suggestion. It satisfies engine.ReasonFormatter.
func (t *Translator) Reason(name string, daysPassed, shelfLifeDays int, urgency engine.Urgency) string {
	key := config.TKeyReasonMedium
	if urgency == engine.UrgencyHigh {
		key = config.TKeyReasonHigh
	}
	data := map[string]any{"Name": name, "Days": daysPassed, "ShelfLife": shelfLifeDays}
	if msg, ok := t.Msg(key, data); ok {
		return msg
	}
	return fmt.Sprintf(config.FallbackReason, daysPassed, shelfLifeDays, urgency)
}

// HealthPrompt asks the user to consider a healthier alternative.
func (t *Translator) HealthPrompt(name, alternative string) string {
	if msg, ok := t.Msg(config.TKeyHealthPrompt, map[string]any{"Name": name, "Alternative": alternative}); ok {
		return msg
	}
	return fmt.Sprintf(config.FallbackHealthPrompt, name, alternative)
}

// Saved confirms an item was stored.
func (t *Translator) Saved(name, category string) string {
	if msg, ok := t.Msg(config.TKeyItemSaved, map[string]any{"Name": name, "Category": category}); ok {
		return msg
	}
	return fmt.Sprintf(config.FallbackSaved, name, category)
}

// NoAlternative reports that the health map has nothing for name.
func (t *Translator) NoAlternative(name string) string {
	if msg, ok := t.Msg(config.TKeyNoAlternative, map[string]any{"Name": name}); ok {
		return msg
	}
	return fmt.Sprintf(config.FallbackNoAlternative, name)
}

// ExpirySummary titles the calendar event of an item.
func (t *Translator) ExpirySummary(name string) string {
	if msg, ok := t.Msg(config.TKeyExpirySummary, map[string]any{"Name": name}); ok {
		return msg
	}
	return fmt.Sprintf(config.FallbackExpirySummary, name)
}

// ExpiryAlarm describes the reminder attached to a calendar event.
func (t *Translator) ExpiryAlarm(name string) string {
	if msg, ok := t.Msg(config.TKeyExpiryAlarm, map[string]any{"Name": name}); ok {
		return msg
	}
	return fmt.Sprintf(config.FallbackExpiryAlarm, name)
}

// CalendarName is the display name of the expiry feed.
func (t *Translator) CalendarName() string {
	if msg, ok := t.Msg(config.TKeyCalendarName, nil); ok {
		return msg
	}
	return config.ICalCalName
}

// Text translates a parameterless key, falling back to def.
func (t *Translator) Text(key, def string) string {
	if msg, ok := t.Msg(key, nil); ok {
		return msg
	}
	return def
}
