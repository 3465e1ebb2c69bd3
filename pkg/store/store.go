// Package store keeps a file-backed index of written lantern designs, so
// repeated runs with the same parameters can find the design they already
// produced. Records are JSON files in a hash-sharded directory tree keyed
// by a digest of the build parameters.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
)

// Record describes one written design.
type Record struct {
	RunID     string         `json:"run_id"`
	Kind      string         `json:"kind"`
	Path      string         `json:"path"`
	Filename  string         `json:"filename"`
	Cores     int            `json:"cores"`
	CreatedAt time.Time      `json:"created_at"`
	Params    map[string]any `json:"params,omitempty"`
}

// Store is a design index rooted at one directory.
type Store struct {
	dir string
}

// Open creates the index directory if needed and returns a store over it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "creating store directory")
	}
	return &Store{dir: dir}, nil
}

// Key derives a deterministic index key from the given parts. Equal parts
// always produce the same key regardless of when or where they are hashed.
func Key(parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Put stores a record under key, replacing any existing one.
func (s *Store) Put(ctx context.Context, key string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encoding design record")
	}
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "creating record directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing design record")
	}
	return nil
}

// Get retrieves the record stored under key. The second result reports
// whether a record exists; a corrupt record counts as absent and is
// removed.
func (s *Store) Get(ctx context.Context, key string) (*Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path := s.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "reading design record")
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return &rec, true, nil
}

// Delete removes the record stored under key, if any.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List returns every record in the index, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	var records []Record
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "listing design records")
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Clear removes every record from the index.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "reading store directory")
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "clearing store")
		}
	}
	return nil
}

// path shards records into subdirectories by key prefix to keep directory
// sizes bounded.
func (s *Store) path(key string) string {
	if len(key) < 3 {
		return filepath.Join(s.dir, key+".json")
	}
	return filepath.Join(s.dir, key[:2], key[2:]+".json")
}
