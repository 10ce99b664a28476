package utils

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the random number source used by the generators. *rand.Rand
// satisfies it, so tests can pass a seeded generator or a scripted fake.
type Source interface {
	// Intn returns a non-negative value in [0, n). n is always > 0.
	Intn(n int) int
}

// lockedSource guards a *rand.Rand so one source can serve concurrent callers.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// DefaultSource returns a time-seeded source that is safe for concurrent use.
func DefaultSource() Source {
	return &lockedSource{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededSource returns a source seeded with seed. It is not safe for
// concurrent use.
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// RandInt returns a random integer in [from, to). If the range is empty it
// returns from.
func RandInt(src Source, from, to int) int {
	if to <= from {
		return from
	}
	return src.Intn(to-from) + from
}

// RandIntInclusive returns a random integer in [from, to].
func RandIntInclusive(src Source, from, to int) int {
	if from > to {
		from, to = to, from
	}
	return src.Intn(to-from+1) + from
}

// Sample draws up to min(count, len(seq)) distinct values from seq, in the
// order they were first drawn. Values are compared by equality, so when seq
// holds duplicates fewer than count values may come back.
func Sample[T comparable](src Source, seq []T, count int) []T {
	if count <= 0 || len(seq) == 0 {
		return nil
	}

	distinct := make(map[T]struct{}, len(seq))
	for _, v := range seq {
		distinct[v] = struct{}{}
	}

	iterations := min(count, len(seq), len(distinct))
	seen := make(map[T]struct{}, iterations)
	result := make([]T, 0, iterations)
	for len(result) < iterations {
		v := seq[RandInt(src, 0, len(seq))]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// Choice picks one element of seq, with every index including the last one
// eligible. It returns the zero value for an empty seq.
func Choice[T any](src Source, seq []T) T {
	var zero T
	if len(seq) == 0 {
		return zero
	}
	return seq[RandIntInclusive(src, 0, len(seq)-1)]
}
