package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tartampluch/go-pantry/internal/config"
	"github.com/tartampluch/go-pantry/internal/engine"
	"github.com/tartampluch/go-pantry/internal/i18n"
	"github.com/tartampluch/go-pantry/internal/store"
)

// AddItemResponse is returned by both add-item routes.
// Alternative and Original are only set when Status is "suggestion".
type AddItemResponse struct {
	Status      string                `json:"status"`
	Message     string                `json:"message"`
	Alternative string                `json:"alternative,omitempty"`
	Original    *engine.InventoryItem `json:"original,omitempty"`
}

// HealthAlternativeResponse answers a health-alternative lookup.
type HealthAlternativeResponse struct {
	Original    string `json:"original"`
	Alternative string `json:"alternative"`
}

type predictionsResponse struct {
	Predictions []engine.Suggestion `json:"predictions"`
}

type alertsResponse struct {
	Alerts []engine.ExpiryAlert `json:"alerts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ValidationError rejects a request at the boundary. Key is the
// translation key of the user-facing message, if there is one.
type ValidationError struct {
	Key string
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc.Inventory)
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	tr := s.translator(r)
	predictions := engine.PredictNeeds(doc.Inventory, engine.Today(s.clock), tr.Reason)
	if predictions == nil {
		predictions = []engine.Suggestion{}
	}
	writeJSON(w, http.StatusOK, predictionsResponse{Predictions: predictions})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.load(w, r)
	if !ok {
		return
	}
	alerts := engine.CheckExpiringSoon(doc.Inventory, engine.Today(s.clock))
	if alerts == nil {
		alerts = []engine.ExpiryAlert{}
	}
	writeJSON(w, http.StatusOK, alertsResponse{Alerts: alerts})
}

func (s *Server) handleHealthAlternative(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get(config.QueryName))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: config.ErrQueryName})
		return
	}

	doc, ok := s.load(w, r)
	if !ok {
		return
	}

	alternative, found := engine.FindHealthAlternative(name, doc.HealthMap)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: s.translator(r).NoAlternative(name)})
		return
	}
	writeJSON(w, http.StatusOK, HealthAlternativeResponse{Original: name, Alternative: alternative})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	s.addItem(w, r, false)
}

func (s *Server) handleForceAddItem(w http.ResponseWriter, r *http.Request) {
	s.addItem(w, r, true)
}

// addItem runs the auto-fill, the health check (unless forced) and the save.
func (s *Server) addItem(w http.ResponseWriter, r *http.Request, force bool) {
	tr := s.translator(r)

	item, err := decodeItem(w, r)
	if err != nil {
		var ve *ValidationError
		msg := config.ErrRequestDecode
		if errors.As(err, &ve) {
			msg = ve.Msg
			if ve.Key != "" {
				msg = tr.Text(ve.Key, ve.Msg)
			}
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, ok := s.load(w, r)
	if !ok {
		return
	}

	autoFill(doc, &item, !force)

	if !force {
		if alternative, found := engine.FindHealthAlternative(item.Name, doc.HealthMap); found {
			slog.Info(config.MsgItemSuggested,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyRequestID, RequestID(r.Context()),
				config.LogKeyName, item.Name,
				config.LogKeyMatch, alternative,
			)
			writeJSON(w, http.StatusOK, AddItemResponse{
				Status:      config.APIStatusSuggestion,
				Message:     tr.HealthPrompt(item.Name, alternative),
				Alternative: alternative,
				Original:    &item,
			})
			return
		}
	}

	s.save(w, r, tr, doc, item)
}

// autoFill replaces the client defaults with what history knows about the item.
// The shelf life is only learned when fillShelfLife is set.
func autoFill(doc *store.Document, item *engine.InventoryItem, fillShelfLife bool) {
	category, shelfLife, found := doc.History(item.Name)
	if !found {
		return
	}
	if category != "" && item.Category == config.DefaultCategory {
		item.Category = category
	}
	if fillShelfLife && shelfLife > 0 && item.ShelfLifeDays == config.DefaultShelfLifeDays {
		item.ShelfLifeDays = shelfLife
	}
	slog.Debug(config.MsgAutoFill,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyName, item.Name,
		config.LogKeyCategory, item.Category,
		config.LogKeyValue, item.ShelfLifeDays,
	)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, tr *i18n.Translator, doc *store.Document, item engine.InventoryItem) {
	if item.LastBought == "" {
		item.LastBought = engine.FormatDate(engine.Today(s.clock))
	}

	updated := doc.Upsert(item)
	if err := s.store.Save(r.Context(), doc); err != nil {
		s.internalError(w, r, err)
		return
	}
	s.notifyChanged()

	slog.Info(config.MsgItemSaved,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRequestID, RequestID(r.Context()),
		config.LogKeyName, item.Name,
		config.LogKeyCategory, item.Category,
		config.LogKeyUpdated, updated,
	)
	writeJSON(w, http.StatusOK, AddItemResponse{
		Status:  config.APIStatusSuccess,
		Message: tr.Saved(item.Name, item.Category),
	})
}

// decodeItem reads and validates the request body.
func decodeItem(w http.ResponseWriter, r *http.Request) (engine.InventoryItem, error) {
	var item engine.InventoryItem
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxRequestBytes)).Decode(&item); err != nil {
		return item, err
	}
	return item, validateItem(&item)
}

// validateItem normalizes the free-text fields and checks the item can be stored.
func validateItem(item *engine.InventoryItem) error {
	item.Name = strings.TrimSpace(item.Name)
	item.Category = strings.TrimSpace(item.Category)
	item.LastBought = strings.TrimSpace(item.LastBought)

	switch {
	case item.Name == "":
		return &ValidationError{Key: config.TKeyErrNameMissing, Msg: config.ErrNameRequired}
	case len(item.Name) > config.MaxNameLength:
		return &ValidationError{Msg: config.ErrNameTooLong}
	case item.ShelfLifeDays <= 0:
		return &ValidationError{Key: config.TKeyErrShelfLife, Msg: config.ErrShelfLife}
	}
	if item.LastBought != "" {
		if _, err := engine.ParseLastBought(item.LastBought, time.UTC); err != nil {
			return &ValidationError{Key: config.TKeyErrDate, Msg: config.ErrLastBought}
		}
	}
	if item.Category == "" {
		item.Category = config.DefaultCategory
	}
	return nil
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (*store.Document, bool) {
	doc, err := s.store.Load(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return nil, false
	}
	return doc, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error(config.HTTPMsgInternalErr,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRequestID, RequestID(r.Context()),
		config.LogKeyRoute, r.URL.Path,
		config.LogKeyError, err,
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: config.HTTPMsgInternalErr})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
