// Package domain provides types shared by the document services.
package domain

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search matches document number or reference
	Search string

	// OrderBy specifies sorting (e.g., "date", "-date")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// MaxListLimit caps page size.
const MaxListLimit = 500

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "-date",
	}
}

// Normalize clamps pagination into the allowed range.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
