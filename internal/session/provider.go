// Copyright 2024 go-dataspace
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package session keeps the display identity of users per session, so that it can still be
// shown when the repository can't be asked. Entries expire on their own.
//
// It is backed by badger, a pure-go embeddable key-value store with both on-disk and
// in-memory backends.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-dataspace/run-access/access"
	"github.com/go-dataspace/run-access/logging"
)

const (
	gcInterval = 5 * time.Minute
	keyPrefix  = "identity-"
)

// Store is a badger backed access.IdentityStore.
type Store struct {
	ctx context.Context
	db  *badger.DB
	ttl time.Duration
}

// New opens the store. The database is closed when ctx is cancelled.
func New(ctx context.Context, inMemory bool, dbPath string, ttl time.Duration) (*Store, error) {
	var opt badger.Options
	var dbType string
	if inMemory {
		opt = badger.DefaultOptions("").WithInMemory(true)
		dbType = "memory"
	} else {
		opt = badger.DefaultOptions(dbPath)
		dbType = "disk"
	}
	ctx, logger := logging.InjectLabels(ctx,
		"module", "badger",
		"db_type", dbType,
		"db_path", dbPath,
	)
	opt = opt.WithLogger(logAdaptor{logger})

	db, err := badger.Open(opt)
	if err != nil {
		return nil, fmt.Errorf("could not open session store: %w", err)
	}
	s := &Store{
		ctx: ctx,
		db:  db,
		ttl: ttl,
	}
	go s.maintenance()
	return s, nil
}

func (s *Store) maintenance() {
	logger := logging.Extract(s.ctx)
	logger.Info("Starting database maintenance loop")
	ticker := time.NewTicker(gcInterval)
	for {
		select {
		case <-ticker.C:
			logger.Debug("Garbage collection starting")
			err := s.db.RunValueLogGC(0.7)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				logger.Error("GC not completed cleanly", "err", err)
			}
		case <-s.ctx.Done():
			ticker.Stop()
			if err := s.db.Close(); err != nil {
				logger.Error("Could not close session store", "err", err)
			}
			return
		}
	}
}

func mkIdentityKey(sessionID string) []byte {
	return []byte(keyPrefix + sessionID)
}

// GetIdentity returns the identity remembered for the session, nil if there is none.
func (s *Store) GetIdentity(ctx context.Context, sessionID string) (*access.UserIdentity, error) {
	var b []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(mkIdentityKey(sessionID))
		if err != nil {
			return err
		}
		b, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read session %s: %w", sessionID, err)
	}
	var identity access.UserIdentity
	if err := json.Unmarshal(b, &identity); err != nil {
		logging.Extract(ctx).Error("Corrupt session entry", "err", err)
		return nil, fmt.Errorf("could not decode session %s: %w", sessionID, err)
	}
	return &identity, nil
}

// PutIdentity remembers the identity for the session for the configured TTL.
func (s *Store) PutIdentity(ctx context.Context, sessionID string, identity access.UserIdentity) error {
	b, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	logging.Extract(ctx).Debug("Writing session identity", "ttl", s.ttl)
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(mkIdentityKey(sessionID), b)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

// DelIdentity forgets the session.
func (s *Store) DelIdentity(_ context.Context, sessionID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(mkIdentityKey(sessionID))
	})
}
