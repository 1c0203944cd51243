package pagination

import "github.com/gofiber/fiber/v2"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Params struct {
	Page     int
	PageSize int
}

// FromQuery reads ?page and ?page_size. Out-of-range values are clamped; a
// page past the end of the result set is served as an empty page, not an
// error.
func FromQuery(c *fiber.Ctx) Params {
	return Normalize(c.QueryInt("page", 1), c.QueryInt("page_size", DefaultPageSize))
}

func Normalize(page, pageSize int) Params {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Params{Page: page, PageSize: pageSize}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p Params) Limit() int {
	return p.PageSize
}

// Envelope is the page wrapper; Next and Previous are page numbers, null at
// the edges.
type Envelope struct {
	Count    int64 `json:"count"`
	Next     *int  `json:"next"`
	Previous *int  `json:"previous"`
	Results  any   `json:"results"`
}

func NewEnvelope(count int64, p Params, results any) Envelope {
	e := Envelope{Count: count, Results: results}
	if p.Page > 1 {
		prev := p.Page - 1
		e.Previous = &prev
	}
	if int64(p.Page*p.PageSize) < count {
		next := p.Page + 1
		e.Next = &next
	}
	return e
}
