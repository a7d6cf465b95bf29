package models

type Pagination struct {
	Total        int `json:"total"`
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalPages   int `json:"totalPages"`
}

// NewPagination derives the page count as ceil(total / limit).
func NewPagination(total, page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Total:        total,
		CurrentPage:  page,
		ItemsPerPage: limit,
		TotalPages:   totalPages,
	}
}

func (p Pagination) HasPrev() bool { return p.CurrentPage > 1 }

func (p Pagination) HasNext() bool { return p.CurrentPage < p.TotalPages }

// Page is one page of a list resource. A page past the end is empty but valid.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
