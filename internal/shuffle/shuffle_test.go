package shuffle

import (
	"testing"
)

func intRange(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestDeterministic_SameKeySameOrder(t *testing.T) {
	items := intRange(20)

	first := Deterministic(Key("exam-1", 42), items)
	second := Deterministic(Key("exam-1", 42), items)

	if len(first) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("orders diverge at index %d: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestDeterministic_IsPermutation(t *testing.T) {
	items := intRange(50)
	out := Deterministic(Key("exam-1", 7), items)

	seen := make(map[int]bool, len(out))
	for _, v := range out {
		if seen[v] {
			t.Fatalf("duplicate item %d in output", v)
		}
		seen[v] = true
	}
	if len(seen) != len(items) {
		t.Fatalf("expected %d distinct items, got %d", len(items), len(seen))
	}
}

func TestDeterministic_DifferentStudentsDiffer(t *testing.T) {
	items := intRange(20)

	a := Deterministic(Key("exam-1", 1), items)
	b := Deterministic(Key("exam-1", 2), items)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different orderings for different students")
	}
}

func TestDeterministic_DoesNotMutateInput(t *testing.T) {
	items := intRange(10)
	_ = Deterministic(Key("exam-1", 3), items)

	for i, v := range items {
		if v != i {
			t.Fatalf("input mutated at index %d: got %d", i, v)
		}
	}
}

func TestSeed_OrderSensitive(t *testing.T) {
	if Seed("a:b") == Seed("b:a") {
		t.Fatal("seed must be sensitive to character order")
	}
}

func TestDeterministic_EmptyAndSingle(t *testing.T) {
	if got := Deterministic(Key("e", 1), []int{}); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", got)
	}
	if got := Deterministic(Key("e", 1), []int{9}); len(got) != 1 || got[0] != 9 {
		t.Fatalf("expected [9], got %v", got)
	}
}
