package core

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one page of a list fetched in full from the backend.
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
	Pages    int `json:"pages"`
}

// Paginate slices items into the requested page (1-based). Out of range pages are empty.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	} else if size > MaxPageSize {
		size = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}

	p := Page[T]{Items: []T{}, Page: page, PageSize: size, Total: len(items)}
	p.Pages = (len(items) + size - 1) / size
	if page > p.Pages {
		return p
	}
	start := (page - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	p.Items = items[start:end]
	return p
}
