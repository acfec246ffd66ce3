// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"fmt"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// PageQuery is the limit/offset pair shared by list endpoints.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// Normalize applies the default page size.
func (p *PageQuery) Normalize() {
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Count  int `json:"count"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// NewListResponse never renders a null item list.
func NewListResponse[T any](items []T, page PageQuery) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items), Limit: page.Limit, Offset: page.Offset}
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// parseID parses a uuid carried in a request body.
func parseID(field, raw string) (id.ID, error) {
	parsed, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), apperror.NewValidation(fmt.Sprintf("invalid %s", field)).WithDetail("field", field)
	}
	return parsed, nil
}

func parseOptionalID(field string, raw *string) (*id.ID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := parseID(field, *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
