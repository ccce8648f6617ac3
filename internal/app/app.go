// Package app wires the pantry service together and runs the background
// refresh of the expiry calendar.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-pantry/internal/config"
	"github.com/tartampluch/go-pantry/internal/engine"
	"github.com/tartampluch/go-pantry/internal/i18n"
	"github.com/tartampluch/go-pantry/internal/server"
	"github.com/tartampluch/go-pantry/internal/store"
	"github.com/zalando/go-keyring"
)

// App holds the long-lived collaborators of the service.
type App struct {
	Settings *config.Settings
	Store    store.Store
	Server   *server.Server
	Catalog  *i18n.Catalog
	Clock    engine.Clock
	Fetcher  engine.HealthMapFetcher
}

// Stats summarizes one refresh.
type Stats struct {
	Items       int
	Predictions int
	Alerts      int
	Events      int
	HealthAdded int
}

// New assembles an App from loaded settings and an opened store.
func New(settings *config.Settings, st store.Store, catalog *i18n.Catalog) *App {
	clock := engine.RealClock{}
	return &App{
		Settings: settings,
		Store:    st,
		Server:   server.New(settings.Server.Address(), st, catalog, clock),
		Catalog:  catalog,
		Clock:    clock,
		Fetcher:  engine.NewHTTPFetcher(),
	}
}

// Run serves HTTP and refreshes the calendar until ctx is cancelled
// or the server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, config.ChannelBufferSize)
	go func() {
		serverErr <- a.Server.Start(ctx)
	}()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		a.backgroundWorker(ctx)
	}()

	err := <-serverErr
	cancel()
	<-workerDone
	return err
}

// backgroundWorker refreshes immediately, then on every tick and after
// every inventory change.
func (a *App) backgroundWorker(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	a.refreshAndLog(ctx)

	ticker := time.NewTicker(a.Settings.RefreshInterval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, a.Settings.RefreshInterval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-a.Server.Changes():
			a.refreshAndLog(ctx)

		case <-ticker.C:
			a.refreshAndLog(ctx)
		}
	}
}

func (a *App) refreshAndLog(ctx context.Context) {
	if _, err := a.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error(config.MsgRefreshFailed,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyError, err)
	}
}

// Refresh merges the remote health map (if configured), then rebuilds the
// expiry calendar served by the HTTP server.
func (a *App) Refresh(ctx context.Context) (Stats, error) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)
	log.Debug(config.MsgRefreshStarted)

	var stats Stats
	if a.Settings.HealthSource.URL != "" {
		added, err := a.mergeRemoteHealthMap(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			log.Warn(config.MsgHealthSkipped, config.LogKeyError, err)
		}
		stats.HealthAdded = added
	}

	doc, err := a.Store.Load(ctx)
	if err != nil {
		return stats, err
	}

	var tr *i18n.Translator
	if a.Catalog != nil {
		tr = a.Catalog.Translator(a.Settings.Language)
	}
	now := a.Clock.Now()
	today := engine.Today(a.Clock)

	ics, events, err := engine.BuildExpiryCalendar(ctx, doc.Inventory, engine.CalendarOptions{
		Now:             now,
		ReminderTrigger: a.Settings.ReminderTrigger,
		CalendarName:    tr.CalendarName(),
		FormatSummary:   tr.ExpirySummary,
		FormatAlarm:     tr.ExpiryAlarm,
	})
	if err != nil {
		return stats, err
	}
	a.Server.Update(ics)

	stats.Items = len(doc.Inventory)
	stats.Events = events
	stats.Predictions = len(engine.PredictNeeds(doc.Inventory, today, tr.Reason))
	stats.Alerts = len(engine.CheckExpiringSoon(doc.Inventory, today))

	log.Info(config.MsgRefreshDone,
		config.LogKeyItems, stats.Items,
		config.LogKeyPredicted, stats.Predictions,
		config.LogKeyAlerts, stats.Alerts,
		config.LogKeyEvents, stats.Events,
		config.LogKeyAdded, stats.HealthAdded,
	)
	return stats, nil
}

func (a *App) mergeRemoteHealthMap(ctx context.Context) (int, error) {
	src := a.Settings.HealthSource
	remote, err := engine.FetchHealthMap(ctx, a.Fetcher, src.URL, src.User, a.password())
	if err != nil {
		return 0, err
	}

	added, err := a.Server.MergeHealthMap(ctx, remote)
	if err != nil {
		return 0, err
	}
	slog.Info(config.MsgHealthMerged,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyCount, remote.Len(),
		config.LogKeyAdded, added,
	)
	return added, nil
}

// password prefers an explicitly configured password, then the system keyring.
func (a *App) password() string {
	src := a.Settings.HealthSource
	if src.Password != "" || src.User == "" {
		return src.Password
	}
	p, err := keyring.Get(config.KeyringService, src.User)
	if err != nil {
		slog.Debug(config.MsgPassFail,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyUser, src.User,
			config.LogKeyError, err)
		return ""
	}
	return p
}

// StorePassword saves the health source password in the system keyring.
func StorePassword(user, password string) error {
	if user == "" {
		return errors.New(config.ErrHealthUser)
	}
	if err := keyring.Set(config.KeyringService, user, password); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyringSave, err)
	}
	return nil
}
