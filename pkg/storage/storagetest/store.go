// Package storagetest provides an in-memory LinkStore for the test suites.
package storagetest

import (
	"context"
	"sync"
	"time"

	"shortlink/pkg/storage"
)

// Store implements storage.LinkStore in memory. The mutex stands in for the
// store-side serialization the real implementation gets from Postgres, and
// the call counters let tests assert that validation happens before I/O.
// When an error field is set, the corresponding method returns it, which is
// how tests simulate an unavailable store.
type Store struct {
	mu    sync.Mutex
	links map[string]*storage.Link
	seq   int

	Finds      int
	Inserts    int
	Increments int
	Deletes    int

	FindErr      error
	InsertErr    error
	IncrementErr error
	DeleteErr    error
	ListErr      error
	PingErr      error
}

func New() *Store {
	return &Store{links: make(map[string]*storage.Link)}
}

func (s *Store) InsertIfAbsent(ctx context.Context, link *storage.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Inserts++
	if s.InsertErr != nil {
		return s.InsertErr
	}
	if _, exists := s.links[link.Code]; exists {
		return storage.ErrCodeExists
	}
	s.seq++
	link.CreatedAt = time.Unix(0, 0).Add(time.Duration(s.seq) * time.Millisecond)
	stored := *link
	s.links[link.Code] = &stored
	return nil
}

func (s *Store) FindByCode(ctx context.Context, code string) (*storage.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Finds++
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	link, exists := s.links[code]
	if !exists {
		return nil, nil
	}
	copied := *link
	return &copied, nil
}

func (s *Store) IncrementClick(ctx context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Increments++
	if s.IncrementErr != nil {
		return "", s.IncrementErr
	}
	link, exists := s.links[code]
	if !exists {
		return "", nil
	}
	link.Clicks++
	now := time.Now()
	link.LastClickedAt = &now
	return link.TargetURL, nil
}

func (s *Store) DeleteByCode(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes++
	if s.DeleteErr != nil {
		return false, s.DeleteErr
	}
	if _, exists := s.links[code]; !exists {
		return false, nil
	}
	delete(s.links, code)
	return true, nil
}

func (s *Store) ListAll(ctx context.Context) ([]*storage.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	links := []*storage.Link{}
	for _, link := range s.links {
		copied := *link
		links = append(links, &copied)
	}
	sortNewestFirst(links)
	return links, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.PingErr
}

// Get returns the stored record for direct inspection, or nil.
func (s *Store) Get(code string) *storage.Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.links[code]
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

func sortNewestFirst(links []*storage.Link) {
	for i := 0; i < len(links); i++ {
		for j := i + 1; j < len(links); j++ {
			if links[j].CreatedAt.After(links[i].CreatedAt) {
				links[i], links[j] = links[j], links[i]
			}
		}
	}
}
