// Package lookup holds the outcome of a read against a cache or store.
package lookup

import "errors"

// ErrCorrupt marks a stored value that exists but cannot be decoded.
var ErrCorrupt = errors.New("stored value is corrupt")

type State int

const (
	StateMiss State = iota
	StateHit
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateHit:
		return "hit"
	case StateFailed:
		return "failed"
	default:
		return "miss"
	}
}

// Result distinguishes a found value, an absent one and a read that broke.
type Result[T any] struct {
	State State
	Value T
	Err   error
}

func Hit[T any](v T) Result[T] {
	return Result[T]{State: StateHit, Value: v}
}

func Miss[T any]() Result[T] {
	return Result[T]{State: StateMiss}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{State: StateFailed, Err: err}
}

func (r Result[T]) IsHit() bool {
	return r.State == StateHit
}

func (r Result[T]) IsFailed() bool {
	return r.State == StateFailed
}
