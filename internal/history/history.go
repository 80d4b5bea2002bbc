// Package history persists records of completed and failed fetches.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/NamanBalaji/fget/internal/status"
)

const (
	fetchesBucket  = "fetches"
	metadataBucket = "metadata"
)

var ErrRecordNotFound = errors.New("fetch record not found")

// Record is one completed (or failed) fetch.
type Record struct {
	ID           uuid.UUID     `json:"id"`
	URL          string        `json:"url"`
	Filename     string        `json:"filename"`
	MimeType     string        `json:"mime_type,omitempty"`
	TotalSize    int64         `json:"total_size"`
	Received     int64         `json:"received"`
	Status       status.Status `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
}

// Repository stores fetch records in a BoltDB file.
type Repository struct {
	db *bolt.DB
}

// NewRepository opens (creating if needed) the history database at dbPath.
func NewRepository(dbPath string) (*Repository, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(fetchesBucket)); err != nil {
			return fmt.Errorf("failed to create fetches bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(metadataBucket)); err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Repository{db: db}, nil
}

// Save persists a record, overwriting any previous record with the same ID.
func (r *Repository) Save(record *Record) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(fetchesBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", fetchesBucket)
		}

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		if err := bucket.Put([]byte(record.ID.String()), data); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}

		return nil
	})
}

// Find retrieves a record by ID.
func (r *Repository) Find(id uuid.UUID) (*Record, error) {
	var record *Record

	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(fetchesBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", fetchesBucket)
		}

		data := bucket.Get([]byte(id.String()))
		if data == nil {
			return ErrRecordNotFound
		}

		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// FindAll retrieves all records.
func (r *Repository) FindAll() ([]*Record, error) {
	var records []*Record

	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(fetchesBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", fetchesBucket)
		}

		return bucket.ForEach(func(k, v []byte) error {
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}
			records = append(records, &record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Delete removes a record by ID. Deleting a missing record is not an error.
func (r *Repository) Delete(id uuid.UUID) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(fetchesBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", fetchesBucket)
		}

		return bucket.Delete([]byte(id.String()))
	})
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}
