package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"menuapi/internal/menu/models"
	"menuapi/pkg/domain"
	"menuapi/pkg/platform/sentinel"
)

// InMemory is a map-backed store for tests and local runs without Postgres.
type InMemory struct {
	mu     sync.RWMutex
	menus  map[domain.MenuID]models.Menu
	nextID domain.MenuID
}

func NewInMemory() *InMemory {
	return &InMemory{menus: make(map[domain.MenuID]models.Menu)}
}

func (s *InMemory) Search(ctx context.Context, name string) ([]*models.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matching(name), nil
}

func (s *InMemory) SearchPaged(ctx context.Context, name string, page, pageSize int) ([]*models.Menu, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.matching(name)
	if page < 1 || pageSize < 1 || page-1 >= (len(all)+pageSize-1)/pageSize {
		return []*models.Menu{}, len(all), nil
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(all))
	return all[start:end], len(all), nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.MenuID) (*models.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.menus[id]
	if !ok {
		return nil, fmt.Errorf("menu %d: %w", id, sentinel.ErrNotFound)
	}
	return &m, nil
}

func (s *InMemory) FindByName(ctx context.Context, name string, exclude domain.MenuID) (*models.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, m := range s.menus {
		if m.Name == name && id != exclude {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("menu %q: %w", name, sentinel.ErrNotFound)
}

func (s *InMemory) Create(ctx context.Context, m *models.Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(m.Name, 0) {
		return fmt.Errorf("menu %q: %w", m.Name, sentinel.ErrConflict)
	}
	s.nextID++
	m.ID = s.nextID
	s.menus[m.ID] = *m
	return nil
}

func (s *InMemory) Update(ctx context.Context, m *models.Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menus[m.ID]; !ok {
		return fmt.Errorf("menu %d: %w", m.ID, sentinel.ErrNotFound)
	}
	if s.nameTaken(m.Name, m.ID) {
		return fmt.Errorf("menu %q: %w", m.Name, sentinel.ErrConflict)
	}
	s.menus[m.ID] = *m
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id domain.MenuID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.menus[id]; !ok {
		return fmt.Errorf("menu %d: %w", id, sentinel.ErrNotFound)
	}
	delete(s.menus, id)
	return nil
}

func (s *InMemory) Ping(ctx context.Context) error { return nil }

func (s *InMemory) nameTaken(name string, exclude domain.MenuID) bool {
	for id, m := range s.menus {
		if m.Name == name && id != exclude {
			return true
		}
	}
	return false
}

// matching returns copies of menus whose name contains filter, case
// insensitively, ordered by name. Caller holds the lock.
func (s *InMemory) matching(filter string) []*models.Menu {
	filter = strings.ToLower(strings.TrimSpace(filter))
	out := make([]*models.Menu, 0, len(s.menus))
	for _, m := range s.menus {
		if filter != "" && !strings.Contains(strings.ToLower(m.Name), filter) {
			continue
		}
		out = append(out, &m)
	}
	slices.SortFunc(out, func(a, b *models.Menu) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return out
}
