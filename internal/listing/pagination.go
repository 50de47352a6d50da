package listing

import "jobboard/internal/models"

// WindowSize is the number of page-number controls shown at once.
const WindowSize = 5

// PageWindow returns up to size page numbers around current, shifted so the
// window stays full near either end. It returns nil when there is at most one
// page.
func PageWindow(current, totalPages, size int) []int {
	if totalPages <= 1 || size <= 0 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	start := current - size/2
	if start < 1 {
		start = 1
	}
	end := start + size - 1
	if end > totalPages {
		end = totalPages
		start = end - size + 1
		if start < 1 {
			start = 1
		}
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Range returns the 1-based bounds of the rows on page, as in
// "Showing from to to of total". Both are 0 for an empty result.
func Range(page, pageSize, total int) (from, to int) {
	if total <= 0 || page < 1 || pageSize <= 0 {
		return 0, 0
	}
	from = (page-1)*pageSize + 1
	if from > total {
		return 0, 0
	}
	to = page * pageSize
	if to > total {
		to = total
	}
	return from, to
}

// Controls describes the pagination bar for one result set.
type Controls struct {
	Current     int   `json:"current"`
	Pages       []int `json:"pages"`
	PrevEnabled bool  `json:"prevEnabled"`
	NextEnabled bool  `json:"nextEnabled"`
}

func NewControls(p models.Pagination) Controls {
	return Controls{
		Current:     p.CurrentPage,
		Pages:       PageWindow(p.CurrentPage, p.TotalPages, WindowSize),
		PrevEnabled: p.HasPrev,
		NextEnabled: p.HasNext,
	}
}
