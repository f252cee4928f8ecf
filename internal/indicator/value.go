// Package indicator computes index-aligned technical indicator series.
//
// Every calculator returns exactly one entry per input bar. An entry whose
// OK flag is false has not enough history behind it yet. Calculators read
// index i only through indices <= i.
package indicator

import (
	"encoding/json"
	"math"
)

// Value is one indicator reading, or an unavailable marker when OK is false.
type Value[T any] struct {
	V  T
	OK bool
}

// Series is an indicator output aligned 1:1 with the input bars.
type Series[T any] []Value[T]

// At returns the value at index i. Out of range indices are unavailable.
func (s Series[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(s) {
		var zero T
		return zero, false
	}
	return s[i].V, s[i].OK
}

// Latest returns the value at the last index.
func (s Series[T]) Latest() (T, bool) {
	return s.At(len(s) - 1)
}

// LatestPair returns the values at the last two indices, ok only when both
// are available.
func (s Series[T]) LatestPair() (prev, curr T, ok bool) {
	n := len(s)
	var okPrev, okCurr bool
	prev, okPrev = s.At(n - 2)
	curr, okCurr = s.At(n - 1)
	return prev, curr, okPrev && okCurr
}

// Valid counts available entries.
func (s Series[T]) Valid() int {
	n := 0
	for _, v := range s {
		if v.OK {
			n++
		}
	}
	return n
}

// MarshalJSON encodes the series as an array with null for unavailable entries.
func (s Series[T]) MarshalJSON() ([]byte, error) {
	out := make([]*T, len(s))
	for i := range s {
		if s[i].OK {
			v := s[i].V
			out[i] = &v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the MarshalJSON form.
func (s *Series[T]) UnmarshalJSON(data []byte) error {
	var raw []*T
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Series[T], len(raw))
	for i, v := range raw {
		if v != nil {
			out[i] = available(*v)
		}
	}
	*s = out
	return nil
}

// Floats flattens a float series, using NaN for unavailable entries.
func Floats(s Series[float64]) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		if v.OK {
			out[i] = v.V
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Map projects each available entry of s through f.
func Map[T, U any](s Series[T], f func(T) U) Series[U] {
	out := make(Series[U], len(s))
	for i, v := range s {
		if v.OK {
			out[i] = available(f(v.V))
		}
	}
	return out
}

func available[T any](v T) Value[T] {
	return Value[T]{V: v, OK: true}
}
