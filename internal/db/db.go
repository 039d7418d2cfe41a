// Package db stores recovered secrets in a BoltDB file, keyed by dataset digest.
package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

type Config struct {
	File    string        `yaml:"file"`
	Timeout time.Duration `yaml:"timeout"`
}

var (
	bucketSecrets = []byte("secrets")
)

var db *bbolt.DB

// Enabled reports whether a db file is configured.
func (c Config) Enabled() bool {
	return c.File != ""
}

func Open(config Config) {
	if db != nil {
		panic("db: already opened")
	}
	if config.File == "" {
		panic("db: file is required")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	err := os.MkdirAll(filepath.Dir(config.File), 0755)
	if err != nil {
		panic(fmt.Errorf("db: create db dir: %w", err))
	}

	db, err = bbolt.Open(config.File, 0600, &bbolt.Options{
		Timeout: timeout,
	})
	if err != nil {
		panic(fmt.Errorf("db: open bbolt db: %w", err))
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{
			bucketSecrets,
		} {
			_, err := tx.CreateBucketIfNotExists(bucket)
			if err != nil {
				return fmt.Errorf("create bucket %q: %w", bucket, err)
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		db = nil
		panic(fmt.Errorf("db: initialize buckets: %w", err))
	}
}

func Close() error {
	if db == nil {
		panic("db: not opened")
	}

	err := db.Close()
	db = nil
	if err != nil {
		return fmt.Errorf("db: close bbolt db: %w", err)
	}
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

func Closer() io.Closer {
	return closerFunc(Close)
}

// Record is a stored solve. Big integers are kept in decimal.
type Record struct {
	Name       string     `json:"name,omitempty"`
	Secret     string     `json:"secret"`
	N          int        `json:"n"`
	K          int        `json:"k"`
	Points     int        `json:"points"`
	Mismatches []Mismatch `json:"mismatches,omitempty"`
	SolvedAt   time.Time  `json:"solved_at"`
}

type Mismatch struct {
	X    string `json:"x"`
	Want string `json:"want"`
	Have string `json:"have"`
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Errorf("db: must: %w", err))
	}
	return v
}

func modify(name string, modify func(*Record, bool) (*Record, error)) error {
	if db == nil {
		panic("db: not opened")
	}

	return db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSecrets)
		if b == nil {
			return fmt.Errorf("db: secrets bucket not found")
		}

		var record *Record
		exists := false

		data := b.Get([]byte(name))
		if data == nil {
			record = &Record{}
		} else {
			err := json.Unmarshal(data, &record)
			if err != nil {
				return fmt.Errorf("db: unmarshal record for %q: %w", name, err)
			}
			exists = true
		}

		var err error
		if record, err = modify(record, exists); err != nil {
			return fmt.Errorf("db: modify record for %q: %w", name, err)
		}

		if record == nil {
			if !exists {
				return nil
			}
			return b.Delete([]byte(name))
		}
		return b.Put([]byte(name), must(json.Marshal(record)))
	})
}

// PutSecret stores r under name. Storing the same secret again keeps the original SolvedAt,
// and an empty Name keeps the stored one.
func PutSecret(name string, r Record) error {
	return modify(name, func(old *Record, exists bool) (*Record, error) {
		if !exists {
			return &r, nil
		}
		if old.Secret == r.Secret && !old.SolvedAt.IsZero() {
			r.SolvedAt = old.SolvedAt
		}
		if r.Name == "" {
			r.Name = old.Name
		}
		return &r, nil
	})
}

func DeleteSecret(name string) error {
	return modify(name, func(*Record, bool) (*Record, error) {
		return nil, nil
	})
}

func Secret(name string) (Record, bool, error) {
	if db == nil {
		panic("db: not opened")
	}

	var (
		record Record
		found  bool
	)
	err := db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSecrets)
		if b == nil {
			return fmt.Errorf("db: secrets bucket not found")
		}

		data := b.Get([]byte(name))
		if data == nil {
			return nil
		}

		found = true
		err := json.Unmarshal(data, &record)
		if err != nil {
			return fmt.Errorf("db: unmarshal record for %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return Record{}, false, err
	}
	return record, found, nil
}

var errStop = fmt.Errorf("stop iteration")

func All() iter.Seq2[string, Record] {
	if db == nil {
		panic("db: not opened")
	}

	return func(yield func(string, Record) bool) {
		err := db.View(func(tx *bbolt.Tx) error {
			b := tx.Bucket(bucketSecrets)
			if b == nil {
				return fmt.Errorf("db: secrets bucket not found")
			}

			return b.ForEach(func(k, v []byte) error {
				var record Record
				err := json.Unmarshal(v, &record)
				if err != nil {
					return fmt.Errorf("db: unmarshal record for %q: %w", k, err)
				}

				if !yield(string(k), record) {
					return errStop
				}
				return nil
			})
		})

		if err != nil {
			if errors.Is(err, errStop) {
				return
			}
			panic(fmt.Errorf("db: get all secrets: %w", err))
		}
	}
}
