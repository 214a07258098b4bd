package util

import "math"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Calculate turns a 1-based page and a page size into an offset and limit.
// Out of range values fall back to the first page and the default size.
// Pages past the last representable offset are clamped to it.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page > math.MaxInt/size {
		page = math.MaxInt / size
	}
	from = (page - 1) * size
	return from, size
}

func PageOf(from, size int) int {
	if size <= 0 {
		return 1
	}
	return from/size + 1
}

// Slice returns the window [from, from+limit) of items, clamped to its
// bounds. A negative from yields an empty window.
func Slice[T any](items []T, from, limit int) []T {
	if from < 0 || from >= len(items) {
		return items[:0]
	}
	end := len(items)
	if limit >= 0 && limit < end-from {
		end = from + limit
	}
	return items[from:end]
}
