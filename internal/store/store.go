// Package store persists computed divergence results to disk so a new
// session starts with a warm cache.
//
// Results are keyed by the symmetric-difference range expression between
// two commit hashes. Counts between two fixed commits never change, so
// entries are replayed as known values; age only bounds file growth.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/raphi011/drift/internal/divergence"
	"github.com/raphi011/drift/internal/git"
)

// MaxEntryAge bounds how long persisted results are kept. The counts
// themselves are immutable; aging out old pairs only keeps the file from
// growing without bound as branches come and go.
const MaxEntryAge = 30 * 24 * time.Hour

// Entry is one persisted divergence result.
type Entry struct {
	Ahead    int       `json:"ahead"`
	Behind   int       `json:"behind"`
	CachedAt time.Time `json:"cached_at"`
}

// Store holds persisted results keyed by range expression.
type Store struct {
	Entries map[string]Entry `json:"entries"`
}

// CachePath returns the path to the cache file for a repository.
func CachePath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", "drift-cache.json")
}

// LockPath returns the path to the lock file for a repository.
func LockPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".git", "drift-cache.lock")
}

// Load loads the persisted store for a repository, dropping entries older
// than [MaxEntryAge]. A missing or corrupted file yields an empty store.
func Load(repoRoot string) (*Store, error) {
	data, err := os.ReadFile(CachePath(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{Entries: make(map[string]Entry)}, nil
		}
		return nil, err
	}

	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		// Corrupted - start fresh
		return &Store{Entries: make(map[string]Entry)}, nil
	}
	if s.Entries == nil {
		s.Entries = make(map[string]Entry)
	}

	for key, e := range s.Entries {
		if time.Since(e.CachedAt) > MaxEntryAge {
			delete(s.Entries, key)
		}
	}

	return &s, nil
}

// Save writes the store to disk atomically.
func Save(repoRoot string, s *Store) error {
	cachePath := CachePath(repoRoot)
	tempPath := cachePath + ".tmp"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tempPath, cachePath)
}

// LoadWithLock acquires the repository's cache lock and loads the store.
// Returns the store, an unlock function, and an error.
// Caller must defer unlock() if err == nil.
func LoadWithLock(repoRoot string) (*Store, func(), error) {
	lock := NewFileLock(LockPath(repoRoot))
	if err := lock.Lock(); err != nil {
		return nil, nil, err
	}

	s, err := Load(repoRoot)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}

	unlock := func() { lock.Unlock() }
	return s, unlock, nil
}

// Merge folds a live cache snapshot into the store. Persisted entries are
// write-once like the cache itself; only new pairs are added.
func (s *Store) Merge(cache *divergence.Cache, now time.Time) {
	for key, r := range cache.Snapshot() {
		if _, ok := s.Entries[key]; ok {
			continue
		}
		s.Entries[key] = Entry{Ahead: r.Ahead, Behind: r.Behind, CachedAt: now}
	}
}

// Replay hands every persisted result to insert as a known value,
// pre-populating a scheduler's cache for this session. The calls are
// synchronous: pushing hundreds of entries through the event bus would
// overflow subscriber buffers, which drop rather than block. Entries
// whose key is not a valid range expression are skipped.
func (s *Store) Replay(insert func(from, to string, value divergence.Result)) int {
	replayed := 0
	for key, e := range s.Entries {
		from, to, ok := git.SplitRevRange(key)
		if !ok {
			continue
		}
		insert(from, to, divergence.Result{Ahead: e.Ahead, Behind: e.Behind})
		replayed++
	}
	return replayed
}
