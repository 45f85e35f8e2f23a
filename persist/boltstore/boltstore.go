// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package boltstore implements persist.Store on top of an embedded
// go.etcd.io/bbolt database: one bucket for optimization records, one for
// iteration-state records, every value JSON-encoded and zstd-compressed
// before being written.
package boltstore

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	bolt "go.etcd.io/bbolt"

	"github.com/zintix-labs/crashlab/errs"
	"github.com/zintix-labs/crashlab/persist"
)

var (
	optimizationsBucket = []byte("optimizations")
	iterationsBucket    = []byte("iteration_states")
)

// Store is a persist.Store backed by a single bbolt file.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt database at path and ensures
// both buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errs.Wrap(err, "boltstore: open database")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(optimizationsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(iterationsBucket)
		return err
	})
	if err != nil {
		return nil, errs.Wrap(err, "boltstore: create buckets")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func compress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(b); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(b []byte) ([]byte, error) {
	zr, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(zr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Store) SaveOptimization(rec persist.OptimizationRecord) error {
	if rec.ID == "" {
		return errs.Warnf("boltstore: optimization record has empty id")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return errs.Wrap(err, "boltstore: marshal optimization record")
	}
	blob, err := compress(raw)
	if err != nil {
		return errs.Wrap(err, "boltstore: compress optimization record")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(optimizationsBucket).Put([]byte(rec.ID), blob)
	})
}

func (s *Store) LoadOptimization(id string) (persist.OptimizationRecord, error) {
	var rec persist.OptimizationRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(optimizationsBucket).Get([]byte(id))
		if v == nil {
			return errs.Warnf("boltstore: no optimization record for id %q", id)
		}
		raw, err := decompress(v)
		if err != nil {
			return errs.Wrap(err, "boltstore: decompress optimization record")
		}
		return json.Unmarshal(raw, &rec)
	})
	return rec, err
}

func (s *Store) ExistsOptimization(id string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket(optimizationsBucket).Get([]byte(id)) != nil
		return nil
	})
	return exists, err
}

func (s *Store) ListOptimizations() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(optimizationsBucket).ForEach(func(k, v []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

func (s *Store) DeleteOptimization(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(optimizationsBucket).Delete([]byte(id)); err != nil {
			return err
		}
		prefix := []byte(id + "/")
		c := tx.Bucket(iterationsBucket).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

// iterationKey packs optimizationID and iteration into one sortable bbolt
// key, so ListIterations can range-scan a single optimization's entries
// with Cursor.Seek instead of a full-bucket scan.
func iterationKey(optimizationID string, iteration int) []byte {
	key := make([]byte, 0, len(optimizationID)+1+4)
	key = append(key, optimizationID...)
	key = append(key, '/')
	var iterBytes [4]byte
	binary.BigEndian.PutUint32(iterBytes[:], uint32(iteration))
	return append(key, iterBytes[:]...)
}

func (s *Store) SaveIteration(rec persist.IterationRecord) error {
	if rec.OptimizationID == "" {
		return errs.Warnf("boltstore: iteration record has empty optimization id")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return errs.Wrap(err, "boltstore: marshal iteration record")
	}
	blob, err := compress(raw)
	if err != nil {
		return errs.Wrap(err, "boltstore: compress iteration record")
	}
	key := iterationKey(rec.OptimizationID, rec.Iteration)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(iterationsBucket).Put(key, blob)
	})
}

func (s *Store) LoadIteration(optimizationID string, iteration int) (persist.IterationRecord, error) {
	var rec persist.IterationRecord
	key := iterationKey(optimizationID, iteration)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(iterationsBucket).Get(key)
		if v == nil {
			return errs.Warnf("boltstore: no iteration %d recorded for optimization %q", iteration, optimizationID)
		}
		raw, err := decompress(v)
		if err != nil {
			return errs.Wrap(err, "boltstore: decompress iteration record")
		}
		return json.Unmarshal(raw, &rec)
	})
	return rec, err
}

func (s *Store) ListIterations(optimizationID string) ([]int, error) {
	var out []int
	prefix := []byte(optimizationID + "/")
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(iterationsBucket).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			iterBytes := k[len(prefix):]
			if len(iterBytes) != 4 {
				return errs.Wrap(fmt.Errorf("corrupt iteration key %x", k), "boltstore: decode iteration key")
			}
			out = append(out, int(binary.BigEndian.Uint32(iterBytes)))
		}
		return nil
	})
	return out, err
}

var _ persist.Store = (*Store)(nil)
