// Package buckets labels airlines Small, Medium or Large by fleet-size tertile.
package buckets

import (
	"errors"
	"math"
	"sort"
)

// Bucket is a fleet-size class.
type Bucket string

const (
	Small  Bucket = "Small"
	Medium Bucket = "Medium"
	Large  Bucket = "Large"
)

// ErrNoFleetSizes is returned when no fleet size is available to split on.
var ErrNoFleetSizes = errors.New("no fleet_size values to compute tertiles")

// Thresholds are the upper bounds of Small and Medium.
type Thresholds struct {
	Q1 float64
	Q2 float64
}

// Tertiles computes the 1/3 and 2/3 quantiles of sizes, ignoring nils and NaN.
// Quantiles interpolate linearly between closest ranks.
func Tertiles(sizes []*float64) (Thresholds, error) {
	var vals []float64
	for _, s := range sizes {
		if s != nil && !math.IsNaN(*s) {
			vals = append(vals, *s)
		}
	}
	if len(vals) == 0 {
		return Thresholds{}, ErrNoFleetSizes
	}
	sort.Float64s(vals)
	return Thresholds{Q1: quantile(vals, 1.0/3), Q2: quantile(vals, 2.0/3)}, nil
}

// quantile expects sorted, non-empty input.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Of classifies one fleet size. A nil size has no bucket.
func (t Thresholds) Of(size *float64) (Bucket, bool) {
	if size == nil || math.IsNaN(*size) {
		return "", false
	}
	switch {
	case *size <= t.Q1:
		return Small, true
	case *size <= t.Q2:
		return Medium, true
	default:
		return Large, true
	}
}

// Assign buckets every size and counts the labels.
func Assign(sizes []*float64) ([]Bucket, map[Bucket]int, Thresholds, error) {
	t, err := Tertiles(sizes)
	if err != nil {
		return nil, nil, Thresholds{}, err
	}
	out := make([]Bucket, len(sizes))
	counts := make(map[Bucket]int, 3)
	for i, s := range sizes {
		if b, ok := t.Of(s); ok {
			out[i] = b
			counts[b]++
		}
	}
	return out, counts, t, nil
}
