package service

// Page sizes of the paginated listings.
const (
	ProductPageSize   = 8
	UserOrderPageSize = 5
	AllOrderPageSize  = 10
)

// Page is one page of a listing. Next and Previous hold page numbers and are nil at the ends.
type Page[T any] struct {
	Count    int  `json:"count"`
	Next     *int `json:"next"`
	Previous *int `json:"previous"`
	Results  []T  `json:"results"`
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func offsetOf(page, size int) int {
	return (normalizePage(page) - 1) * size
}

func newPage[T any](results []T, total, page, size int) *Page[T] {
	page = normalizePage(page)
	p := &Page[T]{Count: total, Results: results}
	if page*size < total {
		next := page + 1
		p.Next = &next
	}
	if page > 1 {
		prev := page - 1
		p.Previous = &prev
	}
	if p.Results == nil {
		p.Results = make([]T, 0)
	}
	return p
}

// MapPage converts the results of a page while keeping its navigation.
func MapPage[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	out := &Page[U]{Count: p.Count, Next: p.Next, Previous: p.Previous, Results: make([]U, 0, len(p.Results))}
	for _, r := range p.Results {
		out.Results = append(out.Results, fn(r))
	}
	return out
}
