package handler

import (
	"strings"

	"menuapi/internal/menu/models"
	"menuapi/internal/menu/service"
	dErrors "menuapi/pkg/domain-errors"
)

// MenuRequest is the body of POST /api/menus and PUT /api/menus/{id}.
type MenuRequest struct {
	Name  string `json:"nome"`
	Order int    `json:"ordem"`
	Icon  string `json:"icone"`
}

// Normalize trims surrounding whitespace.
func (r *MenuRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Icon = strings.TrimSpace(r.Icon)
}

// Validate implements httputil.Validatable.
func (r *MenuRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	m := models.Menu{Name: r.Name, Order: r.Order, Icon: r.Icon}
	return m.Validate()
}

func (r *MenuRequest) input() service.Input {
	return service.Input{Name: r.Name, Order: r.Order, Icon: r.Icon}
}
