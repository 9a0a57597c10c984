package response

import (
	"time"
)

// Response is the envelope of every JSON API response
type Response[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      T      `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// PageResponse is one page of a listing
type PageResponse[T any] struct {
	Page      int `json:"page"`
	Size      int `json:"size"`
	TotalPage int `json:"totalPage"`
	Total     int `json:"total"`
	List      []T `json:"list"`
}

// OK wraps data in a successful response
func OK[T any](data T, message string) *Response[T] {
	return &Response[T]{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Error builds a failed response carrying only a message
func Error(message string) *Response[any] {
	return &Response[any]{
		Success:   false,
		Message:   message,
		Data:      nil,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewPage computes the page count for total items split into pages of size.
func NewPage[T any](list []T, page, size int, total int64) *PageResponse[T] {
	totalPage := 0
	if size > 0 {
		totalPage = (int(total) + size - 1) / size
	}
	if list == nil {
		list = []T{}
	}
	return &PageResponse[T]{
		Page:      page,
		Size:      size,
		Total:     int(total),
		TotalPage: totalPage,
		List:      list,
	}
}

// MapPage converts the items of p with fn, keeping the paging fields.
func MapPage[T, U any](p *PageResponse[T], fn func(T) U) *PageResponse[U] {
	list := make([]U, 0, len(p.List))
	for _, item := range p.List {
		list = append(list, fn(item))
	}
	return &PageResponse[U]{
		Page:      p.Page,
		Size:      p.Size,
		Total:     p.Total,
		TotalPage: p.TotalPage,
		List:      list,
	}
}
