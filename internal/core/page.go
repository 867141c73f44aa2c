package core

// PageSize is the number of expenses shown per list page.
const PageSize = 8

// Page is one slice of a paginated list. Number is 1-based.
type Page[T any] struct {
	Items      []T
	Number     int
	Pages      int
	TotalItems int
	First      int // 1-based index of the first item, 0 when empty
	Last       int
}

// PageCount is ceil(n / PageSize).
func PageCount(n int) int {
	return (n + PageSize - 1) / PageSize
}

// ClampPage keeps page within [1, last page]; an empty list has page 1.
func ClampPage(page, totalItems int) int {
	last := PageCount(totalItems)
	if page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return page
}

func Paginate[T any](items []T, page int) Page[T] {
	page = ClampPage(page, len(items))
	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	p := Page[T]{
		Items:      items[start:end],
		Number:     page,
		Pages:      PageCount(len(items)),
		TotalItems: len(items),
		Last:       end,
	}
	if len(p.Items) > 0 {
		p.First = start + 1
	}
	return p
}

func (p Page[T]) HasPrev() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool { return p.Number < p.Pages }
