package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/tartampluch/go-pantry/internal/config"
)

// BadgerStore keeps the document as a JSON value in an embedded BadgerDB.
type BadgerStore struct {
	db        *badger.DB
	done      chan struct{}
	closeOnce sync.Once
}

// NewBadgerStore opens (or creates) the database in dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrAbsPath, err)
	}

	opts := badger.DefaultOptions(absPath).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrBadgerOpen, err)
	}

	return &BadgerStore{db: db, done: make(chan struct{})}, nil
}

// Load reads the document. A missing key yields an empty document.
func (s *BadgerStore) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(config.BadgerDocumentKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreLoad, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreDecode, err)
	}
	return doc.normalize(), nil
}

// Save replaces the stored document in a single transaction.
func (s *BadgerStore) Save(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(doc.normalize())
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreEncode, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(config.BadgerDocumentKey), data)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreSave, err)
	}
	return nil
}

// RunGC runs one value-log garbage collection cycle.
// badger.ErrNoRewrite means there was nothing to collect.
func (s *BadgerStore) RunGC() error {
	err := s.db.RunValueLogGC(config.BadgerGCDiscardRatio)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// StartGCRoutine periodically collects the value log until Close is called.
func (s *BadgerStore) StartGCRoutine(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				if err := s.RunGC(); err != nil {
					slog.Error(config.MsgBadgerGC,
						config.LogKeyComponent, config.CompStore,
						config.LogKeyError, err)
				}
			}
		}
	}()
	slog.Info(config.MsgBadgerGCStart,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyInterval, interval)
}

// Close stops the GC routine and closes the database.
func (s *BadgerStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.db.Close()
	})
	return err
}
