package paging

const (
	DefaultSize = 10
	MaxSize     = 100
)

// Request selects a zero-based page.
type Request struct {
	Page int
	Size int
}

func (r Request) Normalize() Request {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = DefaultSize
	}
	if r.Size > MaxSize {
		r.Size = MaxSize
	}
	return r
}

func (r Request) Offset() int {
	return r.Page * r.Size
}

type Result[T any] struct {
	Items      []T `json:"content"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalItems int `json:"total_elements"`
	TotalPages int `json:"total_pages"`
}

func NewResult[T any](items []T, req Request, total int) Result[T] {
	pages := 0
	if req.Size > 0 {
		pages = (total + req.Size - 1) / req.Size
	}
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:      items,
		Page:       req.Page,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// Map converts the page items while keeping the counters.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := make([]U, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, fn(item))
	}
	return Result[U]{
		Items:      out,
		Page:       r.Page,
		Size:       r.Size,
		TotalItems: r.TotalItems,
		TotalPages: r.TotalPages,
	}
}

// Slice pages an in-memory slice that is already ordered.
func Slice[T any](all []T, req Request) []T {
	start := req.Offset()
	if start >= len(all) {
		return nil
	}
	end := start + req.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
