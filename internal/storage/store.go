package storage

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	collectionsBucket = []byte("collections")
	metaBucket        = []byte("metadata")
)

// Store is the on-disk query cache. It is opened once at startup, injected
// into whatever needs cached snapshots, and closed at shutdown.
type Store struct {
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

type snapshot struct {
	SavedAt time.Time       `json:"saved_at"`
	Items   json.RawMessage `json:"items"`
}

// NewStore opens (or creates) the cache database. Snapshots older than ttl
// are treated as missing; a ttl of zero never expires them.
func NewStore(dbPath string, ttl, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{collectionsBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCollection stores items under name, replacing any previous snapshot.
func (s *Store) SaveCollection(name string, items any) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	data, err := json.Marshal(snapshot{SavedAt: s.now(), Items: raw})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(collectionsBucket).Put([]byte(name), data)
	})
}

// LoadCollection decodes the snapshot stored under name into out. It
// reports false when there is no snapshot or it has expired.
func (s *Store) LoadCollection(name string, out any) (bool, error) {
	var snap snapshot
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(collectionsBucket).Get([]byte(name))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &snap)
	})
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", name, err)
	}
	if !found || s.expired(snap.SavedAt) {
		return false, nil
	}
	if err := json.Unmarshal(snap.Items, out); err != nil {
		return false, fmt.Errorf("decoding %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) expired(savedAt time.Time) bool {
	return s.ttl > 0 && s.now().Sub(savedAt) > s.ttl
}

// Invalidate drops the snapshot stored under name.
func (s *Store) Invalidate(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(collectionsBucket).Delete([]byte(name))
	})
}

// Purge drops every cached snapshot but keeps fetch metadata.
func (s *Store) Purge() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(collectionsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(collectionsBucket)
		return err
	})
}

func (s *Store) SaveFetchMetadata(meta *FetchMetadata) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put([]byte(meta.Source), data)
	})
}

func (s *Store) GetFetchMetadata(source string) (*FetchMetadata, error) {
	var meta FetchMetadata
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(metaBucket).Get([]byte(source))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &meta)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}
