package randx

import (
	"testing"
	"time"
)

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 100; i++ {
		if got, want := a.Intn(1000), b.Intn(1000); got != want {
			t.Fatalf("Sequences diverged at draw %d: %d != %d", i, got, want)
		}
	}
}

func TestResetReproducesSequence(t *testing.T) {
	s := New(7)
	first := make([]float64, 20)
	for i := range first {
		first[i] = s.Float64()
	}

	s.Reset(7)
	for i := range first {
		if got := s.Float64(); got != first[i] {
			t.Fatalf("Reset did not reproduce draw %d: %v != %v", i, got, first[i])
		}
	}
}

func TestBetweenInclusive(t *testing.T) {
	s := New(1)
	sawLo, sawHi := false, false
	for i := 0; i < 10000; i++ {
		v := s.Between(3, 5)
		if v < 3 || v > 5 {
			t.Fatalf("Between(3, 5) returned %d", v)
		}
		if v == 3 {
			sawLo = true
		}
		if v == 5 {
			sawHi = true
		}
	}
	if !sawLo || !sawHi {
		t.Errorf("Between(3, 5) never hit a bound: lo=%v hi=%v", sawLo, sawHi)
	}

	if v := s.Between(9, 9); v != 9 {
		t.Errorf("Between(9, 9) = %d, want 9", v)
	}
}

func TestUniformRange(t *testing.T) {
	s := New(1)
	for i := 0; i < 10000; i++ {
		v := s.Uniform(10, 20)
		if v < 10 || v >= 20 {
			t.Fatalf("Uniform(10, 20) returned %v", v)
		}
	}
}

func TestBoolExtremes(t *testing.T) {
	s := New(1)
	for i := 0; i < 100; i++ {
		if s.Bool(0) {
			t.Fatal("Bool(0) returned true")
		}
		if !s.Bool(1) {
			t.Fatal("Bool(1) returned false")
		}
	}
}

func TestWeightedAllMassOnOneIndex(t *testing.T) {
	s := New(1)
	for i := 0; i < 100; i++ {
		if got := s.Weighted([]int{0, 0, 5, 0}); got != 2 {
			t.Fatalf("Weighted with single-index mass returned %d", got)
		}
	}
}

func TestWeightedChoice(t *testing.T) {
	s := New(1)
	items := []string{"a", "b", "c"}
	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		counts[WeightedChoice(s, items, []int{70, 25, 5})]++
	}
	if counts["a"] <= counts["b"] || counts["b"] <= counts["c"] {
		t.Errorf("Weighted distribution out of order: %v", counts)
	}
}

func TestSample(t *testing.T) {
	s := New(1)
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	out, err := Sample(s, items, 4)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("Sample returned %d elements, want 4", len(out))
	}
	seen := map[int]bool{}
	for _, v := range out {
		if seen[v] {
			t.Fatalf("Sample returned duplicate %d", v)
		}
		seen[v] = true
	}

	if _, err := Sample(s, items, 11); err == nil {
		t.Error("Sample with n > len(items) did not fail")
	}
}

func TestTimeBetween(t *testing.T) {
	s := New(1)
	a := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 1000; i++ {
		v := s.TimeBetween(a, b)
		if v.Before(a) || !v.Before(b) {
			t.Fatalf("TimeBetween returned %v outside [%v, %v)", v, a, b)
		}
	}

	if v := s.TimeBetween(b, a); !v.Equal(b) {
		t.Errorf("TimeBetween with inverted range = %v, want %v", v, b)
	}
}

func TestDateWithinIsMidnight(t *testing.T) {
	s := New(1)
	ref := time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		d := s.DateWithin(ref, 5)
		if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 {
			t.Fatalf("DateWithin returned non-midnight time %v", d)
		}
		if d.After(ref) || d.Before(ref.AddDate(-5, 0, 0)) {
			t.Fatalf("DateWithin returned %v outside window", d)
		}
	}
}

func TestReadIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)

	bufA := make([]byte, 16)
	bufB := make([]byte, 16)
	if _, err := a.Read(bufA); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if _, err := b.Read(bufB); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(bufA) != string(bufB) {
		t.Error("Read produced different bytes for the same seed")
	}
}
