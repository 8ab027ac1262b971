package flume

import (
	"fmt"
	"strings"
)

// CloseError aggregates failures from a close-handler chain: the first
// handler to fail is the primary failure, and every later distinct failure is
// attached as a suppressed error, in handler order.
type CloseError struct {
	primary    error
	suppressed []error
}

// Primary returns the first failure observed by Close.
func (e *CloseError) Primary() error { return e.primary }

// Suppressed returns the later failures, in the order their handlers ran.
// The returned slice must not be modified.
func (e *CloseError) Suppressed() []error { return e.suppressed }

// Unwrap exposes the primary and suppressed errors to errors.Is/errors.As.
func (e *CloseError) Unwrap() []error {
	out := make([]error, 0, 1+len(e.suppressed))
	out = append(out, e.primary)
	out = append(out, e.suppressed...)
	return out
}

func (e *CloseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "flume: close: %v", e.primary)
	for _, err := range e.suppressed {
		fmt.Fprintf(&b, "; suppressed: %v", err)
	}
	return b.String()
}
