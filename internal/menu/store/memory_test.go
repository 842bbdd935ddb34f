package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"menuapi/internal/menu/models"
	"menuapi/pkg/domain"
	"menuapi/pkg/platform/sentinel"
)

type MenuStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *MenuStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestMenuStoreSuite(t *testing.T) {
	suite.Run(t, new(MenuStoreSuite))
}

func (s *MenuStoreSuite) create(name string, order int) *models.Menu {
	m := &models.Menu{Name: name, Order: order, Icon: "fa-" + name}
	s.Require().NoError(s.store.Create(s.ctx, m))
	return m
}

// TestCreationAndLookups verifies IDs are assigned and rows can be found again.
func (s *MenuStoreSuite) TestCreationAndLookups() {
	s.Run("assigns increasing IDs", func() {
		a := s.create("Alpha", 1)
		b := s.create("Beta", 2)
		s.Positive(a.ID.Int())
		s.Greater(b.ID.Int(), a.ID.Int())
	})

	s.Run("finds by ID", func() {
		m := s.create("Gamma", 3)
		found, err := s.store.FindByID(s.ctx, m.ID)
		s.Require().NoError(err)
		s.Equal(*m, *found)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, domain.MenuID(999))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned menus are copies", func() {
		m := s.create("Delta", 4)
		found, err := s.store.FindByID(s.ctx, m.ID)
		s.Require().NoError(err)
		found.Name = "mutated"

		again, err := s.store.FindByID(s.ctx, m.ID)
		s.Require().NoError(err)
		s.Equal("Delta", again.Name)
	})
}

// TestNameUniqueness verifies duplicate names are rejected, excluding self on update.
func (s *MenuStoreSuite) TestNameUniqueness() {
	a := s.create("Cadastros", 1)
	b := s.create("Relatorios", 2)

	err := s.store.Create(s.ctx, &models.Menu{Name: "Cadastros"})
	s.ErrorIs(err, sentinel.ErrConflict)

	b.Name = "Cadastros"
	s.ErrorIs(s.store.Update(s.ctx, b), sentinel.ErrConflict)

	a.Order = 9
	s.NoError(s.store.Update(s.ctx, a))

	found, err := s.store.FindByName(s.ctx, "Cadastros", 0)
	s.Require().NoError(err)
	s.Equal(a.ID, found.ID)

	_, err = s.store.FindByName(s.ctx, "Cadastros", a.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestSearch verifies filtering, ordering and paging.
func (s *MenuStoreSuite) TestSearch() {
	s.create("Usuarios", 3)
	s.create("Cadastros", 1)
	s.create("cadastro de exames", 2)
	s.create("Relatorios", 4)

	s.Run("empty filter returns all ordered by name", func() {
		all, err := s.store.Search(s.ctx, "  ")
		s.Require().NoError(err)
		s.Equal([]string{"Cadastros", "Relatorios", "Usuarios", "cadastro de exames"}, names(all))
	})

	s.Run("filter is a case-insensitive substring", func() {
		found, err := s.store.Search(s.ctx, "CADASTRO")
		s.Require().NoError(err)
		s.Equal([]string{"Cadastros", "cadastro de exames"}, names(found))
	})

	s.Run("pages and totals", func() {
		items, total, err := s.store.SearchPaged(s.ctx, "", 2, 3)
		s.Require().NoError(err)
		s.Equal(4, total)
		s.Equal([]string{"cadastro de exames"}, names(items))
	})

	s.Run("page beyond the end is empty", func() {
		items, total, err := s.store.SearchPaged(s.ctx, "", 5, 3)
		s.Require().NoError(err)
		s.Equal(4, total)
		s.Empty(items)
	})

	s.Run("offset overflow is an empty page", func() {
		items, total, err := s.store.SearchPaged(s.ctx, "", 1<<62+1, 2)
		s.Require().NoError(err)
		s.Equal(4, total)
		s.Empty(items)
	})
}

// TestUpdateAndDelete verifies not-found handling for writes.
func (s *MenuStoreSuite) TestUpdateAndDelete() {
	s.ErrorIs(s.store.Update(s.ctx, &models.Menu{ID: 42, Name: "x"}), sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, 42), sentinel.ErrNotFound)

	m := s.create("Temp", 0)
	s.Require().NoError(s.store.Delete(s.ctx, m.ID))
	_, err := s.store.FindByID(s.ctx, m.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func names(menus []*models.Menu) []string {
	out := make([]string, 0, len(menus))
	for _, m := range menus {
		out = append(out, m.Name)
	}
	return out
}
