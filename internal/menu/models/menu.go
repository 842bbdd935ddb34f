package models

import (
	"math"
	"strings"

	"menuapi/pkg/domain"
	dErrors "menuapi/pkg/domain-errors"
)

// Field limits mirror the tb_menu column sizes.
const (
	MaxNameLength = 100
	MaxIconLength = 100
)

// Paging defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*MaxPageSize within int.
	MaxPage = math.MaxInt / MaxPageSize
)

// Menu is one navigation entry.
type Menu struct {
	ID    domain.MenuID `json:"codMenu"`
	Name  string        `json:"nome"`
	Order int           `json:"ordem"`
	Icon  string        `json:"icone"`
}

// NewMenu trims and validates the fields of a menu that has not been stored yet.
func NewMenu(name string, order int, icon string) (*Menu, error) {
	m := &Menu{Name: strings.TrimSpace(name), Order: order, Icon: strings.TrimSpace(icon)}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate enforces the column limits and a non-negative order.
func (m *Menu) Validate() error {
	switch {
	case m.Name == "":
		return dErrors.New(dErrors.CodeValidation, "nome is required")
	case len([]rune(m.Name)) > MaxNameLength:
		return dErrors.New(dErrors.CodeValidation, "nome must be at most 100 characters")
	case len([]rune(m.Icon)) > MaxIconLength:
		return dErrors.New(dErrors.CodeValidation, "icone must be at most 100 characters")
	case m.Order < 0:
		return dErrors.New(dErrors.CodeValidation, "ordem must not be negative")
	}
	return nil
}

// Page is one slice of a name-ordered search.
type Page struct {
	Items      []*Menu `json:"items"`
	TotalItems int     `json:"totalItems"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

// ClampPaging applies the paging defaults: page starts at 1 and is capped at
// MaxPage, page size defaults to 10 and is capped at 100.
func ClampPaging(page, pageSize int) (int, int) {
	page = min(max(page, 1), MaxPage)
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// NewPage assembles a page; items is never nil so it encodes as [].
func NewPage(items []*Menu, total, page, pageSize int) *Page {
	if items == nil {
		items = []*Menu{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return &Page{
		Items:      items,
		TotalItems: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
