// Package store persists the storybook collection as a JSON snapshot under a
// byte quota, mirroring how a browser would keep it in localStorage: heavy
// artifact payloads are stripped from the snapshot and the oldest book is
// evicted once when the quota is hit.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/labstack/gommon/bytes"

	"fable/pkg/schema"
	"fable/pkg/utils"
)

const (
	booksFile    = "storybooks.json"
	settingsFile = "settings.json"

	// DefaultQuota matches the usual localStorage allowance.
	DefaultQuota = 5 << 20
)

var (
	// ErrQuotaExceeded is the internal signal that a snapshot is too large.
	ErrQuotaExceeded = errors.New("snapshot exceeds storage quota")

	// ErrPersistence is surfaced to the user when eviction did not help;
	// only manually deleting storybooks can free space.
	ErrPersistence = errors.New("storage full: delete saved storybooks to free space")
)

// Store reads and writes the snapshot files under a single directory.
type Store struct {
	dir   string
	quota int
	mu    sync.Mutex
}

// New opens (creating if needed) a snapshot store. quota <= 0 selects
// DefaultQuota.
func New(dir string, quota int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	if quota <= 0 {
		quota = DefaultQuota
	}
	return &Store{dir: dir, quota: quota}, nil
}

// Load returns the persisted collection; a missing snapshot is an empty
// collection, not an error.
func (s *Store) Load() ([]schema.Storybook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := utils.Load[[]schema.Storybook](filepath.Join(s.dir, booksFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return books, nil
}

// Save persists a stripped snapshot of the collection. On quota overflow the
// oldest book is evicted from the snapshot and the save retried once; a
// second failure surfaces ErrPersistence. The in-memory collection passed in
// is never modified.
func (s *Store) Save(books []schema.Storybook) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Strip(books)
	err := s.write(snapshot)
	if !errors.Is(err, ErrQuotaExceeded) {
		return err
	}

	if len(snapshot) > 1 {
		evicted := oldest(snapshot)
		log.Warnf("snapshot over quota, evicting oldest storybook %q", snapshot[evicted].Title)
		snapshot = append(snapshot[:evicted:evicted], snapshot[evicted+1:]...)
		if err = s.write(snapshot); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w (snapshot quota %s)", ErrPersistence, bytes.Format(int64(s.quota)))
}

func (s *Store) write(snapshot []schema.Storybook) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if len(data) > s.quota {
		return ErrQuotaExceeded
	}

	// Atomic replace so a crash mid-write cannot corrupt the snapshot.
	full := filepath.Join(s.dir, booksFile)
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// oldest returns the index of the earliest-created book.
func oldest(books []schema.Storybook) int {
	idx := 0
	for i := 1; i < len(books); i++ {
		if books[i].CreatedAt.Before(books[idx].CreatedAt) {
			idx = i
		}
	}
	return idx
}

// Strip deep-copies the collection with every artifact reference emptied.
// Only the persisted snapshot is lossy; live books keep their media.
func Strip(books []schema.Storybook) []schema.Storybook {
	out := make([]schema.Storybook, len(books))
	for i, b := range books {
		c := b
		c.CoverImage = ""
		c.Pages = make([]schema.Page, len(b.Pages))
		for j, p := range b.Pages {
			p.Image = ""
			p.Audio = ""
			c.Pages[j] = p
		}
		c.Characters = make([]schema.Character, len(b.Characters))
		for j, ch := range b.Characters {
			ch.ReferenceImage = ""
			c.Characters[j] = ch
		}
		c.KeyObjects = make([]schema.KeyObject, len(b.KeyObjects))
		for j, o := range b.KeyObjects {
			o.Image = ""
			c.KeyObjects[j] = o
		}
		out[i] = c
	}
	return out
}

// LoadSettings returns saved generation preferences, or the defaults when
// none were saved yet.
func (s *Store) LoadSettings() (schema.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := utils.Load[schema.Settings](filepath.Join(s.dir, settingsFile))
	if errors.Is(err, os.ErrNotExist) {
		return schema.DefaultSettings(), nil
	}
	if err != nil {
		return schema.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

// SaveSettings persists generation preferences.
func (s *Store) SaveSettings(settings schema.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return utils.Save(filepath.Join(s.dir, settingsFile), settings)
}
