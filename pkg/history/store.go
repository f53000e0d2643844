// Package history maintains the durable per-player auction price history.
// One JSON file per player maps the ISO-8601 sale timestamp to the USD
// amount. Histories only ever grow: merging inserts absent keys and leaves
// present ones untouched, so repeated or interrupted runs never lose or
// duplicate a record.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/soraredata/auction-tracker/pkg/graphql"
)

// EntityHistory maps an ISO-8601 sale timestamp to the auction price in USD.
type EntityHistory map[string]float64

// Merge inserts every record whose date is not yet present and returns the
// number of insertions. Dates already present are assumed identical and
// skipped, which makes Merge idempotent and commutative.
//
// Known limitation: two distinct sales at the same instant collapse to one
// key. The API is assumed to return unique timestamps per player.
func (h EntityHistory) Merge(records []graphql.PriceRecord) int {
	inserted := 0
	for _, r := range records {
		if _, ok := h[r.Date]; ok {
			continue
		}
		h[r.Date] = r.AmountUSD
		inserted++
	}
	recordsMerged.Add(float64(inserted))
	return inserted
}

// OrderedPrices returns the amounts ordered by ascending sale date, so the
// first element is the player's oldest auction. Dates share one ISO format,
// so lexicographic key order is chronological order.
func (h EntityHistory) OrderedPrices() []float64 {
	dates := make([]string, 0, len(h))
	for d := range h {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	prices := make([]float64, 0, len(dates))
	for _, d := range dates {
		prices = append(prices, h[d])
	}
	return prices
}

// Store loads and persists per-player histories under a single directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads the persisted history for slug. A missing file yields an empty
// history. A file that exists but cannot be parsed is an error: silently
// discarding accumulated history would be worse than a stopped run.
func (s *Store) Load(slug string) (EntityHistory, error) {
	path := s.path(slug)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return EntityHistory{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var h EntityHistory
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("history file %s is corrupt: %w", path, err)
	}
	return h, nil
}

// Persist durably writes the full history for slug, atomically replacing the
// prior file. A crashed run or a concurrent reader never observes a partial
// write.
func (s *Store) Persist(slug string, h EntityHistory) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, slug+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(slug)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace history file: %w", err)
	}

	historiesPersisted.Inc()
	return nil
}

func (s *Store) path(slug string) string {
	return filepath.Join(s.dir, slug+".json")
}
