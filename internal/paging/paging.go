// Package paging computes page counts and page windows over flat item lists.
//
// Two page-count formulas are in use and deliberately kept apart: the
// catalog-style sources use total/size while the play queue uses
// (total-1)/size. Page indices are clamped into [0, pageCount], which
// admits an index equal to the page count.
package paging

// PageCount is the floor division used by the local, remote and
// subscription sources.
func PageCount(total, size int) int {
	size = normSize(size)
	if total <= 0 {
		return 0
	}
	return total / size
}

// QueuePageCount is the play queue's formula.
func QueuePageCount(total, size int) int {
	size = normSize(size)
	if total <= 0 {
		return 0
	}
	return (total - 1) / size
}

// Clamp limits page to [0, pageCount].
func Clamp(page, pageCount int) int {
	if pageCount < 0 {
		pageCount = 0
	}
	if page < 0 {
		return 0
	}
	if page > pageCount {
		return pageCount
	}
	return page
}

// Window returns the flat index range [start, end) covered by page.
func Window(page, size int) (start, end int) {
	size = normSize(size)
	if page < 0 {
		page = 0
	}
	return page * size, (page + 1) * size
}

// Contains reports whether the item at flat index belongs to page.
func Contains(page, size, flat int) bool {
	start, end := Window(page, size)
	return flat >= start && flat < end
}

// Slice returns the part of items that falls into page. The result aliases
// items.
func Slice[T any](items []T, page, size int) []T {
	start, end := Window(page, size)
	if start >= len(items) {
		return nil
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func normSize(size int) int {
	if size <= 0 {
		return 1
	}
	return size
}
