// Package store persists the pantry document: the inventory and the health map.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-pantry/internal/config"
	"github.com/tartampluch/go-pantry/internal/engine"
)

// Document is the whole persisted state of the pantry.
type Document struct {
	Inventory []engine.InventoryItem `json:"inventory"`
	HealthMap engine.HealthMap       `json:"health_map"`
}

// Store loads and saves the pantry document.
// Implementations are safe for concurrent use.
type Store interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
	Close() error
}

// NewDocument returns an empty document that encodes as
// {"inventory": [], "health_map": {}}.
func NewDocument() *Document {
	return &Document{Inventory: []engine.InventoryItem{}}
}

// History returns the category and shelf life recorded for the first item
// with the same name, case-insensitively.
func (d *Document) History(name string) (category string, shelfLifeDays int, found bool) {
	key := engine.NormalizeName(name)
	for _, item := range d.Inventory {
		if engine.NormalizeName(item.Name) == key {
			return item.Category, item.ShelfLifeDays, true
		}
	}
	return "", 0, false
}

// Upsert replaces the entry with the same name in place, or appends item.
// It reports whether an existing entry was replaced.
func (d *Document) Upsert(item engine.InventoryItem) bool {
	key := engine.NormalizeName(item.Name)
	for i, existing := range d.Inventory {
		if engine.NormalizeName(existing.Name) == key {
			d.Inventory[i] = item
			return true
		}
	}
	d.Inventory = append(d.Inventory, item)
	return false
}

// normalize makes sure a decoded document never carries a nil inventory.
func (d *Document) normalize() *Document {
	if d.Inventory == nil {
		d.Inventory = []engine.InventoryItem{}
	}
	return d
}

// Open creates the store selected by the settings.
func Open(s config.StorageSettings) (Store, error) {
	var (
		st  Store
		err error
	)
	switch s.Driver {
	case config.StorageDriverJSON:
		st = NewJSONFileStore(s.Path)
	case config.StorageDriverBadger:
		var bs *BadgerStore
		if bs, err = NewBadgerStore(s.Path); err == nil {
			bs.StartGCRoutine(config.BadgerGCInterval)
			st = bs
		}
	default:
		err = fmt.Errorf("%s: %q", config.ErrStorageDriver, s.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}

	slog.Info(config.MsgStoreOpened,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyDriver, s.Driver,
		config.LogKeyPath, s.Path)
	return st, nil
}
