package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modelwatch-hq/release-scout/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const releasesBucket = "releases"

// boltStore implements a Store backed by BoltDB: one nested bucket per
// provider, records keyed by insertion sequence so list order survives.
type boltStore struct {
	db *bolt.DB
}

type boltRecord struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(releasesBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// LoadKnown reads every provider's records in insertion order. Values that
// do not decode are skipped.
func (b *boltStore) LoadKnown() ([]domain.KnownRelease, error) {
	var out []domain.KnownRelease

	err := b.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(releasesBucket))
		if root == nil {
			return fmt.Errorf("releases bucket missing")
		}

		return root.ForEachBucket(func(provider []byte) error {
			providerBucket := root.Bucket(provider)
			if providerBucket == nil {
				return nil
			}
			return providerBucket.ForEach(func(_, v []byte) error {
				var rec boltRecord
				if err := json.Unmarshal(v, &rec); err != nil || rec.Name == "" {
					return nil
				}
				out = append(out, domain.KnownRelease{
					Provider: string(provider),
					Date:     rec.Date,
					Name:     rec.Name,
				})
				return nil
			})
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load known releases: %w", err)
	}
	return out, nil
}

// Append writes one record under the provider's bucket. The bucket is
// created on first use; unlike the flat-file backend there is no separate
// section to locate.
func (b *boltStore) Append(provider, name, date string) error {
	payload, err := json.Marshal(boltRecord{Date: date, Name: name})
	if err != nil {
		return fmt.Errorf("marshal release record: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(releasesBucket))
		if root == nil {
			return fmt.Errorf("releases bucket missing")
		}
		providerBucket, err := root.CreateBucketIfNotExists([]byte(provider))
		if err != nil {
			return fmt.Errorf("create provider bucket: %w", err)
		}
		seq, err := providerBucket.NextSequence()
		if err != nil {
			return err
		}
		key := []byte(fmt.Sprintf("%08d", seq))
		return providerBucket.Put(key, payload)
	})
}
