// Package pagination computes page counts and the window of page links shown
// around the current page.
package pagination

// DefaultWindowSize is the number of page links rendered when the caller does
// not ask for a specific width.
const DefaultWindowSize = 5

// TotalPages returns how many pages of pageSize items are needed for total items.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Clamp moves page into [1, totalPages]. With no pages it returns 1.
func Clamp(page, totalPages int) int {
	if page < 1 || totalPages < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// PageWindow returns the page numbers to render for the given position using
// DefaultWindowSize.
func PageWindow(totalPages, currentPage int) []int {
	return PageWindowSize(totalPages, currentPage, DefaultWindowSize)
}

// PageWindowSize returns at most size consecutive page numbers centred on
// currentPage. The window slides instead of shrinking near either end, and an
// out-of-range currentPage is clamped first. An empty result means there are
// no pages.
func PageWindowSize(totalPages, currentPage, size int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	if size <= 0 {
		size = DefaultWindowSize
	}
	current := Clamp(currentPage, totalPages)

	if totalPages <= size {
		return sequence(1, totalPages)
	}

	start := current - size/2
	if start < 1 {
		start = 1
	}
	if end := start + size - 1; end > totalPages {
		start = totalPages - size + 1
	}
	return sequence(start, start+size-1)
}

func sequence(from, to int) []int {
	pages := make([]int, 0, to-from+1)
	for p := from; p <= to; p++ {
		pages = append(pages, p)
	}
	return pages
}
