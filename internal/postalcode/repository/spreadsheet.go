package repository

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"cep_lookup/platform/logger"
)

// SpreadsheetStore serves lookups from an in-memory index built from a base
// workbook and a user workbook. User additions are indexed immediately and
// appended to the user workbook on a best-effort basis.
type SpreadsheetStore struct {
	user *UserWorkbook
	log  *logger.Logger

	mu      sync.RWMutex
	index   map[string]Entry
	entries int
}

// NewSpreadsheetStore loads basePath (required) and userPath (optional)
// concurrently.
func NewSpreadsheetStore(ctx context.Context, basePath, userPath string, log *logger.Logger) (*SpreadsheetStore, error) {
	var base, user []Entry

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := ReadWorkbook(basePath, SourceBase)
		if err != nil {
			return fmt.Errorf("load base workbook: %w", err)
		}
		base = entries
		return nil
	})
	g.Go(func() error {
		if userPath == "" || !fileExists(userPath) {
			return nil
		}
		entries, err := ReadWorkbook(userPath, SourceUser)
		if err != nil {
			return fmt.Errorf("load user workbook: %w", err)
		}
		user = entries
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &SpreadsheetStore{
		log:   log,
		index: make(map[string]Entry, len(base)+len(user)),
	}
	if userPath != "" {
		s.user = NewUserWorkbook(userPath)
	}
	for _, e := range base {
		s.insert(e)
	}
	for _, e := range user {
		s.insert(e)
	}

	log.Info("postal code workbooks loaded", "base", len(base), "user", len(user), "keys", len(s.index))
	return s, nil
}

// Find returns the first entry loaded for the key.
func (s *SpreadsheetStore) Find(ctx context.Context, city, region string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.index[Key(city, region)]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

// Add indexes e and appends it to the user workbook. A failed write is
// logged and reported through persisted.
func (s *SpreadsheetStore) Add(ctx context.Context, e Entry) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	e.Source = SourceUser

	s.mu.Lock()
	s.insert(e)
	s.mu.Unlock()

	if s.user == nil {
		return false, nil
	}
	if err := s.user.Append(e); err != nil {
		s.log.StoreError("spreadsheet.Add", err)
		return false, nil
	}
	return true, nil
}

// Len returns the number of rows indexed, duplicates included.
func (s *SpreadsheetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// insert keeps the first entry seen for a key. Callers hold mu or own s.
func (s *SpreadsheetStore) insert(e Entry) {
	s.entries++
	key := e.Key()
	if _, exists := s.index[key]; exists {
		return
	}
	s.index[key] = e
}

var _ Store = (*SpreadsheetStore)(nil)
