package shared

// Pagination describes the position of a page inside a larger result set,
// as reported by the portal API.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Consistent reports whether the pagination flags agree with the page
// counters: HasNext == (page < totalPages) and HasPrev == (page > 1).
func (p Pagination) Consistent() bool {
	return p.HasNext == (p.Page < p.TotalPages) && p.HasPrev == (p.Page > 1)
}

// Paginated bundles one page of results with its pagination metadata.
// Invariant: len(Data) <= Pagination.Limit.
type Paginated[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// PageRequest selects a page for the paginated gateway operations.
type PageRequest struct {
	Page  int
	Limit int
}

// DefaultPageRequest is used when the caller does not specify a page.
func DefaultPageRequest() PageRequest {
	return PageRequest{Page: 1, Limit: 10}
}

// Normalize clamps out-of-range values onto the defaults.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = 10
	}
	return r
}
