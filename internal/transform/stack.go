package transform

import "github.com/inamate/graphpad/internal/vec"

// Stack tracks the scopes entered while walking a diagram tree.
// The root scope can never be popped.
type Stack struct {
	scopes []Scope
}

// NewStack returns a stack holding only the root scope for view.
func NewStack(view vec.Matrix) *Stack {
	return &Stack{scopes: []Scope{Root(view)}}
}

// Current returns the innermost scope.
func (s *Stack) Current() Scope {
	return s.scopes[len(s.scopes)-1]
}

// Depth returns the number of scopes entered above the root.
func (s *Stack) Depth() int {
	return len(s.scopes) - 1
}

// Push enters a child scope and returns it.
func (s *Stack) Push(local vec.Matrix) Scope {
	child := s.Current().Child(local)
	s.scopes = append(s.scopes, child)
	return child
}

// Pop leaves the innermost scope.
func (s *Stack) Pop() {
	if len(s.scopes) > 1 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

// Within runs fn inside a child scope. The parent scope is restored when
// fn returns, including when it panics.
func (s *Stack) Within(local vec.Matrix, fn func(Scope) error) error {
	depth := len(s.scopes)
	scope := s.Push(local)
	defer func() { s.scopes = s.scopes[:depth] }()
	return fn(scope)
}
