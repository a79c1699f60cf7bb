package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page is the list envelope: a total row count, relative links to the
// neighbouring pages (null at the edges) and the rows of the current window.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Map rebuilds the envelope with transformed results, keeping count and
// links intact.
func (p Page[T]) Map(f func(T) any) Page[any] {
	results := make([]any, 0, len(p.Results))

	for _, item := range p.Results {
		results = append(results, f(item))
	}

	return Page[any]{
		Count:    p.Count,
		Next:     p.Next,
		Previous: p.Previous,
		Results:  results,
	}
}

// Paginate counts the query, loads the window selected by the page and
// page_size query params (out-of-range values are clamped, never an error)
// and wraps the rows in the envelope. Results is always non-nil so empty
// pages serialize as [].
func Paginate[T any](ctx *gin.Context, query *gorm.DB) (Page[T], error) {
	page, size := pageParams(ctx)

	var total int64

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	results := make([]T, 0, size)

	err := query.Session(&gorm.Session{}).
		Offset((page - 1) * size).
		Limit(size).
		Find(&results).Error

	if err != nil {
		return Page[T]{}, err
	}

	paged := Page[T]{Count: total, Results: results}

	if page > 1 {
		paged.Previous = pageLink(ctx, page-1)
	}

	if int64(page*size) < total {
		paged.Next = pageLink(ctx, page+1)
	}

	return paged, nil
}

func pageParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))

	if page <= 0 {
		page = 1
	}

	size, _ := strconv.Atoi(ctx.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	if size <= 0 {
		size = defaultPageSize
	}

	if size > maxPageSize {
		size = maxPageSize
	}

	return page, size
}

func pageLink(ctx *gin.Context, page int) *string {
	u := *ctx.Request.URL

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	link := u.String()
	return &link
}
