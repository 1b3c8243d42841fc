/*
Package stats collects diagnostic datapoints while images are encoded and
summarises them as tables and text histograms.

It is safe to feed a single Stats from concurrent encoder passes.
*/
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/bodgit/monopack/codec"
)

// Keys used by Observer and AddTrials.
const (
	KeyRawByte   = "raw.byte"
	KeyRunLength = "rlc.run"
	keySize      = "size."
)

// Stats is an append-only collection of integer datapoints grouped by key.
type Stats struct {
	mu   sync.Mutex
	data map[string][]int
}

// New returns an empty Stats.
func New() *Stats {
	return &Stats{
		data: make(map[string][]int),
	}
}

// Add appends a datapoint under key.
func (s *Stats) Add(key string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append(s.data[key], value)
}

// Values returns a copy of the datapoints recorded under key.
func (s *Stats) Values(key string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.data[key]...)
}

// Keys returns every key with at least one datapoint, sorted.
func (s *Stats) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Observer returns a codec.Observer that records every raw byte under
// KeyRawByte and the length of every run under KeyRunLength.
func (s *Stats) Observer() codec.Observer {
	return codec.ObserverFunc(func(k codec.Kind, b byte) {
		switch k {
		case codec.Raw:
			s.Add(KeyRawByte, int(b))
		case codec.RunLength:
			_, n := codec.DecodeRun(b)
			s.Add(KeyRunLength, n)
		}
	})
}

// AddTrials records the estimated size of each trial under "size.<kind>".
func (s *Stats) AddTrials(trials []codec.Trial) {
	for _, t := range trials {
		s.Add(keySize+t.Kind.String(), t.Size)
	}
}

// WriteTable writes the datapoints under key, if any, on a single line.
func (s *Stats) WriteTable(w io.Writer, key string) error {
	values := s.Values(key)
	if len(values) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s: %v\n", key, values)
	return err
}

// Bin is one histogram bucket covering [Lo, Hi), the last bucket also
// includes Hi.
type Bin struct {
	Lo, Hi float64
	Count  int
}

func bounds(values []int) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return float64(lo), float64(hi)
}

func count(values []int, lo, hi float64, n int) []int {
	counts := make([]int, n)
	width := (hi - lo) / float64(n)
	for _, v := range values {
		i := n - 1
		if width > 0 {
			i = int((float64(v) - lo) / width)
		}
		if i >= n {
			i = n - 1
		}
		counts[i]++
	}
	return counts
}

// OptimumBins chooses a bin count for values by minimising the
// Shimazaki-Shinomoto cost over 2 to 24 bins. Data with fewer than five
// distinct values gets one bin per distinct value.
func OptimumBins(values []int) int {
	distinct := make(map[int]struct{})
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	if len(distinct) < 5 {
		return len(distinct)
	}

	lo, hi := bounds(values)

	best, bestCost := 2, math.Inf(1)
	for n := 2; n < 25; n++ {
		d := (hi - lo) / float64(n)
		counts := count(values, lo, hi, n)

		var mean float64
		for _, c := range counts {
			mean += float64(c)
		}
		mean /= float64(n)

		var variance float64
		for _, c := range counts {
			variance += (float64(c) - mean) * (float64(c) - mean)
		}
		variance /= float64(n)

		if cost := (2*mean - variance) / (d * d); cost < bestCost {
			best, bestCost = n, cost
		}
	}
	return best
}

// Histogram buckets the datapoints under key into bins equal-width bins
// spanning the smallest to the largest value. If bins is not positive,
// OptimumBins picks the count. It returns nil if there is no data.
func (s *Stats) Histogram(key string, bins int) []Bin {
	values := s.Values(key)
	if len(values) == 0 {
		return nil
	}
	if bins <= 0 {
		bins = OptimumBins(values)
	}

	lo, hi := bounds(values)
	width := (hi - lo) / float64(bins)

	out := make([]Bin, bins)
	for i, c := range count(values, lo, hi, bins) {
		out[i] = Bin{
			Lo:    lo + float64(i)*width,
			Hi:    lo + float64(i+1)*width,
			Count: c,
		}
	}
	out[bins-1].Hi = hi
	return out
}

const barWidth = 50

// WriteHistogram renders Histogram(key, bins) as a text bar chart.
func (s *Stats) WriteHistogram(w io.Writer, key string, bins int) error {
	h := s.Histogram(key, bins)
	if h == nil {
		return nil
	}

	var most int
	for _, b := range h {
		if b.Count > most {
			most = b.Count
		}
	}

	if _, err := fmt.Fprintf(w, "%s (%d values)\n", key, len(s.Values(key))); err != nil {
		return err
	}
	for _, b := range h {
		bar := strings.Repeat("#", b.Count*barWidth/most)
		if _, err := fmt.Fprintf(w, "%8.1f - %8.1f | %6d %s\n", b.Lo, b.Hi, b.Count, bar); err != nil {
			return err
		}
	}
	return nil
}
