package model

import (
	"math"
	"time"
)

type Item struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemFilter narrows an owner's item listing. SortBy and SortDirection are
// expected to be validated before they reach a repository.
type ItemFilter struct {
	OwnerID       int64
	Search        string
	SortBy        string
	SortDirection string
	Page          int
	PerPage       int
}

// Offset returns the number of rows preceding the requested page. It
// saturates at math.MaxInt instead of overflowing.
func (f ItemFilter) Offset() int {
	if f.Page <= 1 || f.PerPage <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PerPage {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PerPage
}

type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type ItemPage struct {
	Data []Item   `json:"data"`
	Meta PageMeta `json:"meta"`
}
