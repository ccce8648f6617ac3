// Package server exposes the pantry over HTTP: the JSON API used by the
// web client and the expiry calendar feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/tartampluch/go-pantry/internal/config"
	"github.com/tartampluch/go-pantry/internal/engine"
	"github.com/tartampluch/go-pantry/internal/i18n"
	"github.com/tartampluch/go-pantry/internal/store"
)

// Server handles the API routes and serves the cached calendar.
type Server struct {
	// cache uses atomic.Pointer for lock-free reads.
	cache atomic.Pointer[cacheItem]

	Addr string

	store   store.Store
	catalog *i18n.Catalog
	clock   engine.Clock

	// writeMu serializes the load/modify/save cycle of add-item requests.
	writeMu sync.Mutex
	changed chan struct{}
}

// New creates a server bound to addr. catalog may be nil, in which case
// responses use the built-in English text.
func New(addr string, st store.Store, catalog *i18n.Catalog, clock engine.Clock) *Server {
	if clock == nil {
		clock = engine.RealClock{}
	}
	return &Server{
		Addr:    addr,
		store:   st,
		catalog: catalog,
		clock:   clock,
		changed: make(chan struct{}, config.ChannelBufferSize),
	}
}

// Changes signals every time the inventory has been saved.
// Signals coalesce while nobody is reading.
func (s *Server) Changes() <-chan struct{} {
	return s.changed
}

func (s *Server) notifyChanged() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Handler returns the routed handler, wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteInventory, s.handleInventory)
	mux.HandleFunc(config.RoutePredictions, s.handlePredictions)
	mux.HandleFunc(config.RouteAlerts, s.handleAlerts)
	mux.HandleFunc(config.RouteHealthAlt, s.handleHealthAlternative)
	mux.HandleFunc(config.RouteAddItem, s.handleAddItem)
	mux.HandleFunc(config.RouteForceAdd, s.handleForceAddItem)
	mux.HandleFunc(config.RouteCalendar, s.handleCalendarRequest)
	return withRequestID(mux)
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.Addr,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// translator resolves the response language from ?lang= then Accept-Language.
func (s *Server) translator(r *http.Request) *i18n.Translator {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Translator(r.URL.Query().Get(config.QueryLang), r.Header.Get(config.HeaderAcceptLanguage))
}

// MergeHealthMap appends the entries of remote unknown to the stored health
// map and saves the document when something was added.
// It shares the add-item lock so concurrent saves are never lost.
func (s *Server) MergeHealthMap(ctx context.Context, remote engine.HealthMap) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	added := doc.HealthMap.Merge(remote)
	if added == 0 {
		return 0, nil
	}
	if err := s.store.Save(ctx, doc); err != nil {
		return 0, err
	}
	return added, nil
}
