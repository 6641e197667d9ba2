package randx

import (
	"fmt"
	"math/rand"
	"time"
)

// Source is the single deterministic random stream shared by every
// generation stage. All stages read from one Source in a fixed call
// order, so two runs with the same seed produce identical datasets.
type Source struct {
	rng *rand.Rand
}

func New(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Reset re-initializes the stream to a fixed state. Must be called
// before a generation run when reusing a Source.
func (s *Source) Reset(seed int64) {
	s.rng = rand.New(rand.NewSource(seed))
}

func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

func (s *Source) Int63n(n int64) int64 {
	return s.rng.Int63n(n)
}

func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Between returns an integer in [lo, hi] inclusive.
func (s *Source) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// Uniform returns a float64 in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Bool returns true with probability p.
func (s *Source) Bool(p float64) bool {
	return s.rng.Float64() < p
}

// Read implements io.Reader so the Source can feed consumers that
// expect an entropy stream, e.g. uuid.NewRandomFromReader.
func (s *Source) Read(p []byte) (int, error) {
	return s.rng.Read(p)
}

// Weighted picks an index with probability proportional to weights[i].
func (s *Source) Weighted(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	n := s.rng.Intn(total)
	for i, w := range weights {
		if n < w {
			return i
		}
		n -= w
	}
	return len(weights) - 1
}

// TimeBetween returns a timestamp uniformly drawn from [a, b).
func (s *Source) TimeBetween(a, b time.Time) time.Time {
	if !b.After(a) {
		return a
	}
	d := b.Sub(a)
	return a.Add(time.Duration(s.rng.Int63n(int64(d))))
}

// PastTime returns a timestamp within the window before ref.
func (s *Source) PastTime(ref time.Time, window time.Duration) time.Time {
	return s.TimeBetween(ref.Add(-window), ref)
}

// DateWithin returns a date (midnight UTC) between yearsBack years ago
// and ref.
func (s *Source) DateWithin(ref time.Time, yearsBack int) time.Time {
	t := s.TimeBetween(ref.AddDate(-yearsBack, 0, 0), ref)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Choice returns a uniformly drawn element of items.
func Choice[T any](s *Source, items []T) T {
	return items[s.rng.Intn(len(items))]
}

// WeightedChoice returns an element of items drawn with the given
// weights. items and weights must have equal length.
func WeightedChoice[T any](s *Source, items []T, weights []int) T {
	return items[s.Weighted(weights)]
}

// Sample draws n distinct elements from items without replacement.
// Requesting more elements than exist is a fatal precondition for
// callers, so it is reported as an error rather than truncated.
func Sample[T any](s *Source, items []T, n int) ([]T, error) {
	if n > len(items) {
		return nil, fmt.Errorf("sample size %d exceeds population %d", n, len(items))
	}
	idx := s.rng.Perm(len(items))
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = items[idx[i]]
	}
	return out, nil
}
