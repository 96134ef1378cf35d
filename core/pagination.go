package core

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
)

// Page is a 1-based page of Limit units. The unit is an item in the flat view
// and a calendar day in the group view.
type Page struct {
	Number int
	Limit  int
}

// NewPage parses page and limit, falling back to the defaults for anything
// that is not a positive integer. A maxLimit above zero caps the limit. The
// page number is capped so its offset still fits in an int; such a page lies
// past the end and comes back empty.
func NewPage(page string, limit string, maxLimit int) Page {
	p := Page{Number: positiveOr(page, DefaultPage), Limit: positiveOr(limit, DefaultLimit)}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}

	if lastPage := math.MaxInt / p.Limit; p.Number > lastPage {
		p.Number = lastPage
	}

	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages is the number of pages needed to hold total units.
func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}

	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

func positiveOr(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}

	return n
}
