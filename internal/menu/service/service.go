package service

import (
	"context"
	"errors"
	"log/slog"

	"menuapi/internal/menu/metrics"
	"menuapi/internal/menu/models"
	"menuapi/pkg/domain"
	dErrors "menuapi/pkg/domain-errors"
	"menuapi/pkg/platform/sentinel"
	"menuapi/pkg/requestcontext"
)

// Store is the menu persistence the service needs.
type Store interface {
	Search(ctx context.Context, name string) ([]*models.Menu, error)
	SearchPaged(ctx context.Context, name string, page, pageSize int) ([]*models.Menu, int, error)
	FindByID(ctx context.Context, id domain.MenuID) (*models.Menu, error)
	FindByName(ctx context.Context, name string, exclude domain.MenuID) (*models.Menu, error)
	Create(ctx context.Context, menu *models.Menu) error
	Update(ctx context.Context, menu *models.Menu) error
	Delete(ctx context.Context, id domain.MenuID) error
}

// Input carries the writable fields of a menu.
type Input struct {
	Name  string
	Order int
	Icon  string
}

var (
	errMenuNotFound = dErrors.New(dErrors.CodeNotFound, "menu not found")
	errMenuExists   = dErrors.New(dErrors.CodeConflict, "menu already exists")
)

// Service implements menu search and maintenance.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns every menu whose name contains name, ordered by name.
func (s *Service) Search(ctx context.Context, name string) ([]*models.Menu, error) {
	menus, err := s.store.Search(ctx, name)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search menus")
	}
	if menus == nil {
		menus = []*models.Menu{}
	}
	return menus, nil
}

// SearchPaged clamps the paging parameters before querying.
func (s *Service) SearchPaged(ctx context.Context, name string, page, pageSize int) (*models.Page, error) {
	page, pageSize = models.ClampPaging(page, pageSize)
	items, total, err := s.store.SearchPaged(ctx, name, page, pageSize)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search menus")
	}
	return models.NewPage(items, total, page, pageSize), nil
}

func (s *Service) Get(ctx context.Context, id domain.MenuID) (*models.Menu, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapMenuErr(err, "failed to load menu")
	}
	return m, nil
}

// Create rejects a name already used by another menu.
func (s *Service) Create(ctx context.Context, in Input) (*models.Menu, error) {
	m, err := models.NewMenu(in.Name, in.Order, in.Icon)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameAvailable(ctx, m.Name, 0); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, wrapMenuErr(err, "failed to create menu")
	}

	s.metrics.IncrementWrite("create")
	s.logWrite(ctx, "menu created", m.ID)
	return m, nil
}

// Update replaces all writable fields. The menu may keep its own name.
func (s *Service) Update(ctx context.Context, id domain.MenuID, in Input) (*models.Menu, error) {
	next, err := models.NewMenu(in.Name, in.Order, in.Icon)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return nil, wrapMenuErr(err, "failed to load menu")
	}
	if err := s.ensureNameAvailable(ctx, next.Name, id); err != nil {
		return nil, err
	}
	next.ID = id
	if err := s.store.Update(ctx, next); err != nil {
		return nil, wrapMenuErr(err, "failed to update menu")
	}

	s.metrics.IncrementWrite("update")
	s.logWrite(ctx, "menu updated", id)
	return next, nil
}

func (s *Service) Delete(ctx context.Context, id domain.MenuID) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return wrapMenuErr(err, "failed to load menu")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return wrapMenuErr(err, "failed to delete menu")
	}

	s.metrics.IncrementWrite("delete")
	s.logWrite(ctx, "menu deleted", id)
	return nil
}

func (s *Service) ensureNameAvailable(ctx context.Context, name string, exclude domain.MenuID) error {
	_, err := s.store.FindByName(ctx, name, exclude)
	switch {
	case err == nil:
		return errMenuExists
	case errors.Is(err, sentinel.ErrNotFound):
		return nil
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check menu name")
	}
}

func (s *Service) logWrite(ctx context.Context, msg string, id domain.MenuID) {
	s.logger.InfoContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"menu_id", id.Int(),
		"subject", requestcontext.Principal(ctx).NameIdentifier(),
	)
}

// wrapMenuErr maps store sentinels to client-facing errors.
func wrapMenuErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return errMenuNotFound
	case errors.Is(err, sentinel.ErrConflict):
		return errMenuExists
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
