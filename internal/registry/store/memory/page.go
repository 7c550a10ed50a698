package memory

import (
	"cmp"
	"slices"

	"orgatlas/internal/registry/models"
)

// compareFunc orders two rows by one field.
type compareFunc[T any] func(a, b T) int

// paginate sorts rows in place by the page's field, breaking ties by id, and
// cuts the requested page out of them.
func paginate[T any](rows []T, page models.Page, fields map[string]compareFunc[T]) models.PageResult[T] {
	byID := fields[models.DefaultSortBy]
	by, ok := fields[page.SortBy]
	if !ok {
		by = byID
	}
	slices.SortFunc(rows, func(a, b T) int {
		c := by(a, b)
		if c == 0 && byID != nil {
			c = byID(a, b)
		}
		if page.Direction == models.SortDesc {
			return -c
		}
		return c
	})

	result := models.PageResult[T]{Total: len(rows), Page: page.Page, Size: page.Size, Items: []T{}}
	start := page.Offset()
	if start >= len(rows) {
		return result
	}
	end := min(start+page.Size, len(rows))
	result.Items = append(result.Items, rows[start:end]...)
	return result
}

// comparePtr orders nil before any value.
func comparePtr[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
