// Package shuffle provides a deterministic, seedable permutation primitive.
// The same seed key always produces the same ordering, so a student who
// reloads mid-attempt sees their questions in an unchanged order while two
// students get independent orders.
package shuffle

import "fmt"

// Linear congruential generator constants (Numerical Recipes), modulo 2^32
// via uint32 wraparound.
const (
	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
)

// lcg is a minimal 32-bit linear congruential generator. Not suitable for
// anything security-sensitive; its only job is reproducibility.
type lcg struct {
	state uint32
}

func (g *lcg) next() uint32 {
	g.state = g.state*lcgMultiplier + lcgIncrement
	return g.state
}

// Seed derives a 32-bit seed from a key string using a polynomial rolling
// hash. The hash is order-sensitive: "a:b" and "b:a" seed differently.
func Seed(key string) uint32 {
	var h uint32
	for _, r := range key {
		h = h*31 + uint32(r)
	}
	return h
}

// Key builds the canonical per-attempt seed key for an exam/student pair.
func Key(examID string, studentID int) string {
	return fmt.Sprintf("%s:%d", examID, studentID)
}

// Deterministic returns a new slice holding a Fisher-Yates permutation of
// items driven by the seed key. The input slice is not modified.
func Deterministic[T any](key string, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)

	g := &lcg{state: Seed(key)}
	for i := len(out) - 1; i > 0; i-- {
		j := int(g.next() % uint32(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
