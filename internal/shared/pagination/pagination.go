// Package pagination implements page-number pagination shared by list use cases.
package pagination

import (
	"errors"
	"math"
)

// ErrInvalidPage signals a page number that is malformed or past the last page.
var ErrInvalidPage = errors.New("invalid page")

const (
	DefaultPageSize = 10
	DefaultMaxSize  = 100
)

// Policy carries the configured page size limits.
type Policy struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPolicy returns the limits used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{DefaultSize: DefaultPageSize, MaxSize: DefaultMaxSize}
}

// Request identifies a page window. Number starts at 1.
type Request struct {
	Number int
	Size   int
}

// Resolve applies the policy to client supplied values. Zero values select defaults.
func (p Policy) Resolve(number, size int) (Request, error) {
	if p.DefaultSize <= 0 {
		p.DefaultSize = DefaultPageSize
	}
	if p.MaxSize <= 0 {
		p.MaxSize = DefaultMaxSize
	}
	if number == 0 {
		number = 1
	}
	if number < 1 {
		return Request{}, ErrInvalidPage
	}
	if size <= 0 {
		size = p.DefaultSize
	}
	if size > p.MaxSize {
		size = p.MaxSize
	}
	// the offset of the page must fit in an int
	if number-1 > (math.MaxInt-size)/size {
		return Request{}, ErrInvalidPage
	}
	return Request{Number: number, Size: size}, nil
}

// Offset returns the number of items preceding the page.
func (r Request) Offset() int {
	if r.Number < 1 {
		return 0
	}
	return (r.Number - 1) * r.Size
}

// CheckBounds rejects pages past the last one. Page 1 is always valid, even when empty.
func (r Request) CheckBounds(total int64) error {
	if r.Number < 1 || r.Size < 1 {
		return ErrInvalidPage
	}
	if r.Number == 1 {
		return nil
	}
	if total <= 0 || int64(r.Number-1) > (total-1)/int64(r.Size) {
		return ErrInvalidPage
	}
	return nil
}

// Page is one window of a larger ordered result plus the total count.
type Page[T any] struct {
	Items  []T
	Total  int64
	Number int
	Size   int
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	if p.Number < 1 || p.Size < 1 || p.Total <= 0 {
		return false
	}
	return int64(p.Number-1) < (p.Total-1)/int64(p.Size)
}

// HasPrevious reports whether an earlier page exists.
func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

// Slice cuts the requested window out of an already ordered slice.
func Slice[T any](items []T, req Request) (Page[T], error) {
	total := int64(len(items))
	if err := req.CheckBounds(total); err != nil {
		return Page[T]{}, err
	}
	start := req.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + req.Size
	if end > len(items) {
		end = len(items)
	}
	window := make([]T, 0, end-start)
	window = append(window, items[start:end]...)
	return Page[T]{Items: window, Total: total, Number: req.Number, Size: req.Size}, nil
}

// Map converts the items of a page while keeping its position.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, fn(item))
	}
	return Page[U]{Items: items, Total: page.Total, Number: page.Number, Size: page.Size}
}
