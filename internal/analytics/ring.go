// Package analytics keeps a bounded in-memory record of builder activity.
package analytics

// Ring is a fixed-capacity buffer that overwrites its oldest item when
// full. It is not safe for concurrent use.
type Ring[T any] struct {
	items []T
	next  int
	full  bool
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

func (r *Ring[T]) Push(v T) {
	r.items[r.next] = v
	r.next = (r.next + 1) % len(r.items)
	if r.next == 0 {
		r.full = true
	}
}

func (r *Ring[T]) Len() int {
	if r.full {
		return len(r.items)
	}
	return r.next
}

func (r *Ring[T]) Cap() int { return len(r.items) }

// Items returns a copy of the contents, oldest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, 0, r.Len())
	if r.full {
		out = append(out, r.items[r.next:]...)
	}
	return append(out, r.items[:r.next]...)
}
