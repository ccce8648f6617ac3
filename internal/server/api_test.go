package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-pantry/internal/config"
	"github.com/tartampluch/go-pantry/internal/engine"
	"github.com/tartampluch/go-pantry/internal/i18n"
	"github.com/tartampluch/go-pantry/internal/server"
	"github.com/tartampluch/go-pantry/internal/store"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

var now = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

// MockStore mocks store.Store to simulate persistence failures.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context) (*store.Document, error) {
	args := m.Called(ctx)
	doc, _ := args.Get(0).(*store.Document)
	return doc, args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, doc *store.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}

type fixture struct {
	srv     *server.Server
	handler http.Handler
	store   store.Store
}

func newFixture(t *testing.T, seed *store.Document) *fixture {
	t.Helper()

	st := store.NewJSONFileStore(filepath.Join(t.TempDir(), "db.json"))
	if seed != nil {
		require.NoError(t, st.Save(context.Background(), seed))
	}

	catalog, err := i18n.Load(config.DefaultLanguage)
	require.NoError(t, err)

	srv := server.New("", st, catalog, MockClock{CurrentTime: now})
	return &fixture{srv: srv, handler: srv.Handler(), store: st}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func (f *fixture) inventory(t *testing.T) []engine.InventoryItem {
	t.Helper()
	doc, err := f.store.Load(context.Background())
	require.NoError(t, err)
	return doc.Inventory
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func pantry() *store.Document {
	return &store.Document{
		Inventory: []engine.InventoryItem{
			{Name: "Milk", Category: "Dairy", ShelfLifeDays: 10, LastBought: "2025-06-05"},
			{Name: "Bread", Category: "Bakery", ShelfLifeDays: 5, LastBought: "2025-06-12"},
			{Name: "Rice", Category: "Grains", ShelfLifeDays: 365, LastBought: "2025-06-01"},
			{Name: "Ghost", Category: "Misc", ShelfLifeDays: 1, LastBought: "not-a-date"},
		},
		HealthMap: engine.NewHealthMap("Soda", "Sparkling Water", "Chips", "Nuts"),
	}
}

// -----------------------------------------------------------------------------
// Read Routes
// -----------------------------------------------------------------------------

func TestInventory(t *testing.T) {
	t.Run("Empty store returns an empty array", func(t *testing.T) {
		w := newFixture(t, nil).do(t, http.MethodGet, "/api/inventory", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, config.MimeJSON, w.Header().Get(config.HeaderContentType))
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Returns the stored items", func(t *testing.T) {
		w := newFixture(t, pantry()).do(t, http.MethodGet, "/api/inventory", "")

		items := decode[[]engine.InventoryItem](t, w)
		assert.Len(t, items, 4)
		assert.Equal(t, "Milk", items[0].Name)
	})
}

func TestPredictions(t *testing.T) {
	f := newFixture(t, pantry())

	w := f.do(t, http.MethodGet, "/api/predictions", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[map[string][]engine.Suggestion](t, w)["predictions"]
	require.Len(t, got, 1)
	assert.Equal(t, "Milk", got[0].Item)
	assert.Equal(t, engine.UrgencyMedium, got[0].Urgency)
	assert.Equal(t, 10, got[0].DaysPassed)
	assert.Equal(t, "Bought 10 days ago (Shelf life: 10 days) - Urgency: Medium", got[0].Reason)
}

func TestPredictions_Localized(t *testing.T) {
	f := newFixture(t, pantry())

	w := f.do(t, http.MethodGet, "/api/predictions?lang=fr", "")
	got := decode[map[string][]engine.Suggestion](t, w)["predictions"]
	require.Len(t, got, 1)
	assert.Equal(t, "Acheté il y a 10 jours (conservation : 10 jours) - Urgence : moyenne", got[0].Reason)
	assert.Equal(t, engine.UrgencyMedium, got[0].Urgency, "Urgency stays machine readable")

	req := httptest.NewRequest(http.MethodGet, "/api/predictions", nil)
	req.Header.Set(config.HeaderAcceptLanguage, "fr-FR,fr;q=0.9")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "Acheté il y a 10 jours")
}

func TestPredictions_EmptyIsArray(t *testing.T) {
	w := newFixture(t, nil).do(t, http.MethodGet, "/api/predictions", "")
	assert.JSONEq(t, `{"predictions": []}`, w.Body.String())
}

func TestAlerts(t *testing.T) {
	w := newFixture(t, pantry()).do(t, http.MethodGet, "/api/alerts", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.JSONEq(t, `{"alerts": [
		{"item": "Milk", "days_left": 0, "status": "Critical"},
		{"item": "Bread", "days_left": 2, "status": "Critical"}
	]}`, w.Body.String())
}

func TestAlerts_EmptyIsArray(t *testing.T) {
	w := newFixture(t, nil).do(t, http.MethodGet, "/api/alerts", "")
	assert.JSONEq(t, `{"alerts": []}`, w.Body.String())
}

func TestHealthAlternative(t *testing.T) {
	f := newFixture(t, pantry())

	t.Run("Found", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/health-alternative?name=Orange+Soda", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"original": "Orange Soda", "alternative": "Sparkling Water"}`, w.Body.String())
	})

	t.Run("Not found", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/health-alternative?name=Apple", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error": "No healthier alternative found for 'Apple'."}`, w.Body.String())
	})

	t.Run("Missing name", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/health-alternative", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// -----------------------------------------------------------------------------
// Write Routes
// -----------------------------------------------------------------------------

func TestAddItem_SuggestsAlternativeWithoutSaving(t *testing.T) {
	f := newFixture(t, pantry())

	w := f.do(t, http.MethodPost, "/api/add-item",
		`{"name": "Chps", "category": "Snacks", "shelf_life_days": 30}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[server.AddItemResponse](t, w)
	assert.Equal(t, config.APIStatusSuggestion, resp.Status)
	assert.Equal(t, "Nuts", resp.Alternative)
	assert.Equal(t, "Wait! 'Chps' might be unhealthy. Try 'Nuts' instead?", resp.Message)
	require.NotNil(t, resp.Original)
	assert.Equal(t, "Chps", resp.Original.Name)
	assert.Equal(t, "Snacks", resp.Original.Category)

	assert.Len(t, f.inventory(t), 4, "A suggestion must not be persisted")
}

func TestAddItem_SavesWithDefaultDate(t *testing.T) {
	f := newFixture(t, pantry())

	w := f.do(t, http.MethodPost, "/api/add-item",
		`{"name": "Eggs", "category": "Dairy", "shelf_life_days": 21}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "success", "message": "Eggs saved under Dairy."}`, w.Body.String())

	items := f.inventory(t)
	require.Len(t, items, 5)
	assert.Equal(t, engine.InventoryItem{Name: "Eggs", Category: "Dairy", ShelfLifeDays: 21, LastBought: "2025-06-15"}, items[4])

	select {
	case <-f.srv.Changes():
	default:
		t.Fatal("A save must signal a change")
	}
}

func TestAddItem_AutoFillFromHistory(t *testing.T) {
	f := newFixture(t, pantry())

	w := f.do(t, http.MethodPost, "/api/add-item",
		`{"name": "milk", "category": "General", "shelf_life_days": 7, "last_bought": "2025-06-14"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "success", "message": "milk saved under Dairy."}`, w.Body.String())

	items := f.inventory(t)
	require.Len(t, items, 4, "Existing entry is updated, not duplicated")
	assert.Equal(t, engine.InventoryItem{Name: "milk", Category: "Dairy", ShelfLifeDays: 10, LastBought: "2025-06-14"}, items[0])
}

func TestAddItem_ExplicitValuesAreKept(t *testing.T) {
	f := newFixture(t, pantry())

	w := f.do(t, http.MethodPost, "/api/add-item",
		`{"name": "Milk", "category": "Drinks", "shelf_life_days": 12}`)

	require.Equal(t, http.StatusOK, w.Code)
	items := f.inventory(t)
	assert.Equal(t, "Drinks", items[0].Category)
	assert.Equal(t, 12, items[0].ShelfLifeDays)
}

func TestForceAddItem(t *testing.T) {
	seed := pantry()
	seed.Inventory = append(seed.Inventory, engine.InventoryItem{Name: "Soda", Category: "Drinks", ShelfLifeDays: 90, LastBought: "2025-01-01"})
	f := newFixture(t, seed)

	w := f.do(t, http.MethodPost, "/api/force-add-item",
		`{"name": "Soda", "category": "General", "shelf_life_days": 7}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "success", "message": "Soda saved under Drinks."}`, w.Body.String())

	items := f.inventory(t)
	require.Len(t, items, 5)
	assert.Equal(t, engine.InventoryItem{Name: "Soda", Category: "Drinks", ShelfLifeDays: 7, LastBought: "2025-06-15"}, items[4],
		"Force add learns the category but keeps the submitted shelf life")
}

func TestAddItem_Localized(t *testing.T) {
	f := newFixture(t, pantry())

	w := f.do(t, http.MethodPost, "/api/add-item?lang=fr",
		`{"name": "Oeufs", "category": "Crèmerie", "shelf_life_days": 21}`)

	assert.JSONEq(t, `{"status": "success", "message": "Oeufs enregistré dans Crèmerie."}`, w.Body.String())
}

func TestAddItem_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"Malformed JSON", `{"name": `, config.ErrRequestDecode},
		{"Wrong type", `{"name": "Milk", "shelf_life_days": "ten"}`, config.ErrRequestDecode},
		{"Missing name", `{"category": "Dairy", "shelf_life_days": 3}`, "Please enter an item name."},
		{"Blank name", `{"name": "   ", "shelf_life_days": 3}`, "Please enter an item name."},
		{"Name too long", `{"name": "` + strings.Repeat("x", config.MaxNameLength+1) + `", "shelf_life_days": 3}`, config.ErrNameTooLong},
		{"Zero shelf life", `{"name": "Milk", "shelf_life_days": 0}`, "Shelf life must be at least one day."},
		{"Negative shelf life", `{"name": "Milk", "shelf_life_days": -4}`, "Shelf life must be at least one day."},
		{"Bad date", `{"name": "Milk", "shelf_life_days": 3, "last_bought": "15/06/2025"}`, "The purchase date must look like YYYY-MM-DD."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, pantry())

			w := f.do(t, http.MethodPost, "/api/add-item", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantErr, decode[map[string]string](t, w)["error"])
			assert.Len(t, f.inventory(t), 4)
		})
	}
}

func TestAddItem_ValidationLocalized(t *testing.T) {
	w := newFixture(t, nil).do(t, http.MethodPost, "/api/add-item?lang=fr", `{"name": "", "shelf_life_days": 3}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Veuillez saisir le nom du produit.", decode[map[string]string](t, w)["error"])
}

func TestAddItem_EmptyCategoryDefaults(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodPost, "/api/add-item", `{"name": "Apples", "shelf_life_days": 14}`)

	assert.JSONEq(t, `{"status": "success", "message": "Apples saved under General."}`, w.Body.String())
}

func TestAddItem_MethodNotAllowed(t *testing.T) {
	w := newFixture(t, nil).do(t, http.MethodGet, "/api/add-item", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// -----------------------------------------------------------------------------
// Failures & Middleware
// -----------------------------------------------------------------------------

func TestStoreFailures(t *testing.T) {
	t.Run("Load", func(t *testing.T) {
		m := new(MockStore)
		m.On("Load", mock.Anything).Return(nil, errors.New("disk on fire"))
		h := server.New("", m, nil, MockClock{CurrentTime: now}).Handler()

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error": "Internal Server Error"}`, w.Body.String())
		m.AssertExpectations(t)
	})

	t.Run("Save", func(t *testing.T) {
		m := new(MockStore)
		m.On("Load", mock.Anything).Return(store.NewDocument(), nil)
		m.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only filesystem"))
		srv := server.New("", m, nil, MockClock{CurrentTime: now})

		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/add-item",
			strings.NewReader(`{"name": "Eggs", "category": "Dairy", "shelf_life_days": 21}`)))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		select {
		case <-srv.Changes():
			t.Fatal("A failed save must not signal a change")
		default:
		}
		m.AssertExpectations(t)
	})
}

func TestRequestID(t *testing.T) {
	f := newFixture(t, nil)

	t.Run("Generated", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/inventory", "")
		_, err := uuid.Parse(w.Header().Get(config.HeaderRequestID))
		assert.NoError(t, err)
	})

	t.Run("Propagated", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
		req.Header.Set(config.HeaderRequestID, id)
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)

		assert.Equal(t, id, w.Header().Get(config.HeaderRequestID))
	})

	t.Run("Garbage replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
		req.Header.Set(config.HeaderRequestID, "<script>")
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)

		assert.NotEqual(t, "<script>", w.Header().Get(config.HeaderRequestID))
	})
}

func TestCalendarRoute(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/calendar.ics", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	f.srv.Update([]byte(config.StubVCalendar))
	w = f.do(t, http.MethodGet, "/calendar.ics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, config.StubVCalendar, w.Body.String())
}
