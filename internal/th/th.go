// Package th provides basic test helpers.
package th

import (
	"fmt"
	"strings"
	"testing"
)

// Name generates a test name.
// Works the same way as fmt.Sprint, but adds spaces between all arguments.
func Name(args ...any) string {
	res := fmt.Sprintln(args...)
	return strings.TrimSpace(res)
}

// Range returns the ints in [start, end).
func Range(start, end int) []int {
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}

// SumRange returns the sum of the ints in [start, end).
func SumRange(start, end int) int {
	sum := 0
	for i := start; i < end; i++ {
		sum += i
	}
	return sum
}

// TestBothModes runs f as two subtests, once for sequential and once for
// parallel evaluation.
func TestBothModes(t *testing.T, f func(t *testing.T, parallel bool)) {
	t.Run("sequential", func(t *testing.T) {
		f(t, false)
	})

	t.Run("parallel", func(t *testing.T) {
		f(t, true)
	})
}
