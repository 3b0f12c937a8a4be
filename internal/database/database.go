// Package database provides persistent storage backed by bbolt.
package database

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketRemoteIDs = []byte("remote_ids")
	bucketMagnets   = []byte("magnets")
)

// RemoteIDRecord remembers the acquisition service identifier last assigned
// to an info hash so a later acquisition can resume polling instead of
// re-uploading the magnet.
type RemoteIDRecord struct {
	Hash      string    `json:"hash"`
	RemoteID  string    `json:"remote_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MagnetRecord tracks a magnet added to the acquisition service so the
// cleanup pass can delete entries past their retention window.
type MagnetRecord struct {
	RemoteID string    `json:"remote_id"`
	Hash     string    `json:"hash"`
	Title    string    `json:"title"`
	AddedAt  time.Time `json:"added_at"`
}

// Database defines the storage operations used by the services.
type Database interface {
	// Remote ID bookkeeping
	GetRemoteID(hash string) (*RemoteIDRecord, error)
	SetRemoteID(hash, remoteID string) error
	DeleteRemoteID(hash string) error

	// Magnet retention bookkeeping
	StoreMagnet(record *MagnetRecord) error
	ListMagnetsOlderThan(cutoff time.Time) ([]*MagnetRecord, error)
	DeleteMagnet(remoteID string) error

	Close() error
}

// BoltDB implements Database using a bbolt file store.
type BoltDB struct {
	db *bolt.DB
}

// New opens (or creates) the database file at path.
func New(path string) (*BoltDB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketRemoteIDs, bucketMagnets} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// GetRemoteID returns the remembered remote ID for hash, or nil when none is
// stored.
func (b *BoltDB) GetRemoteID(hash string) (*RemoteIDRecord, error) {
	var record *RemoteIDRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRemoteIDs).Get([]byte(hash))
		if data == nil {
			return nil
		}
		record = &RemoteIDRecord{}
		return json.Unmarshal(data, record)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get remote ID: %w", err)
	}
	return record, nil
}

// SetRemoteID stores or replaces the remote ID remembered for hash.
func (b *BoltDB) SetRemoteID(hash, remoteID string) error {
	record := RemoteIDRecord{
		Hash:      hash,
		RemoteID:  remoteID,
		UpdatedAt: time.Now(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal remote ID: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRemoteIDs).Put([]byte(hash), data)
	})
}

// DeleteRemoteID forgets the remote ID for hash. Deleting a missing entry is
// not an error.
func (b *BoltDB) DeleteRemoteID(hash string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRemoteIDs).Delete([]byte(hash))
	})
}

// StoreMagnet records a magnet added to the acquisition service.
func (b *BoltDB) StoreMagnet(record *MagnetRecord) error {
	if record.AddedAt.IsZero() {
		record.AddedAt = time.Now()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal magnet: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMagnets).Put([]byte(record.RemoteID), data)
	})
}

// ListMagnetsOlderThan returns magnets added before cutoff.
func (b *BoltDB) ListMagnetsOlderThan(cutoff time.Time) ([]*MagnetRecord, error) {
	var records []*MagnetRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMagnets).ForEach(func(_, data []byte) error {
			var record MagnetRecord
			if err := json.Unmarshal(data, &record); err != nil {
				return err
			}
			if record.AddedAt.Before(cutoff) {
				records = append(records, &record)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list magnets: %w", err)
	}
	return records, nil
}

// DeleteMagnet removes the retention record for remoteID.
func (b *BoltDB) DeleteMagnet(remoteID string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMagnets).Delete([]byte(remoteID))
	})
}

// Close closes the underlying bbolt file.
func (b *BoltDB) Close() error {
	return b.db.Close()
}
