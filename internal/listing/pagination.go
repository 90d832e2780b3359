package listing

const (
	DefaultPageSize       = 5
	DefaultMaxPageButtons = 5
)

// Page is one rendered page of a filtered collection.
type Page[T any] struct {
	Number     int
	TotalPages int
	Items      []T
	// Window lists the page numbers to offer as buttons.
	Window  []int
	HasPrev bool
	HasNext bool
	// Truncated is set when pages exist beyond the window.
	Truncated bool
}

// TotalPages is ceil(n/size), never less than 1.
func TotalPages(n, size int) int {
	if size < 1 {
		size = 1
	}
	total := (n + size - 1) / size
	if total < 1 {
		return 1
	}
	return total
}

// PageSlice returns the items of 1-based page current. Pages outside the
// collection are empty.
func PageSlice[T any](items []T, current, size int) []T {
	if size < 1 || current < 1 {
		return nil
	}
	start := (current - 1) * size
	if start >= len(items) {
		return nil
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// PageWindow returns the inclusive range of page buttons around current.
// end < start when current lies past the last page.
func PageWindow(current, total, maxButtons int) (start, end int) {
	if maxButtons < 1 {
		maxButtons = 1
	}
	start = max(1, current-maxButtons/2)
	end = min(total, start+maxButtons-1)
	return start, end
}

func Paginate[T any](items []T, current, size, maxButtons int) Page[T] {
	total := TotalPages(len(items), size)
	start, end := PageWindow(current, total, maxButtons)

	var window []int
	for n := start; n <= end; n++ {
		window = append(window, n)
	}

	return Page[T]{
		Number:     current,
		TotalPages: total,
		Items:      PageSlice(items, current, size),
		Window:     window,
		HasPrev:    current > 1,
		HasNext:    current < total,
		Truncated:  current < total && total > maxButtons,
	}
}
