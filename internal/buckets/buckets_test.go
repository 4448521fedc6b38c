package buckets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sizes(vs ...float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		out[i] = &vs[i]
	}
	return out
}

func TestTertiles(t *testing.T) {
	th, err := Tertiles(sizes(1, 2, 3, 4, 5, 6, 7))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, th.Q1, 1e-12)
	assert.InDelta(t, 5.0, th.Q2, 1e-12)

	th, err = Tertiles(sizes(10, 20))
	require.NoError(t, err)
	assert.InDelta(t, 13.333333333, th.Q1, 1e-6)
	assert.InDelta(t, 16.666666667, th.Q2, 1e-6)
}

func TestQuantile_Bounds(t *testing.T) {
	vals := []float64{2, 4, 8}
	assert.Equal(t, 2.0, quantile(vals, 0))
	assert.Equal(t, 8.0, quantile(vals, 1))
	assert.InDelta(t, 6.0, quantile(vals, 0.75), 1e-12)
	assert.Equal(t, 5.0, quantile([]float64{5}, 0.5))
}

func TestAssign(t *testing.T) {
	in := sizes(1, 2, 3, 4, 5, 6, 7)
	in = append(in, nil)

	got, counts, th, err := Assign(in)
	require.NoError(t, err)
	assert.Equal(t, []Bucket{Small, Small, Small, Medium, Medium, Large, Large, ""}, got)
	assert.Equal(t, 3, counts[Small])
	assert.Equal(t, 2, counts[Medium])
	assert.Equal(t, 2, counts[Large])
	assert.InDelta(t, 3.0, th.Q1, 1e-12)
}

func TestAssign_SingleValue(t *testing.T) {
	got, _, _, err := Assign(sizes(42, 42))
	require.NoError(t, err)
	assert.Equal(t, []Bucket{Small, Small}, got)
}

func TestAssign_NoSizes(t *testing.T) {
	_, _, _, err := Assign([]*float64{nil})
	assert.ErrorIs(t, err, ErrNoFleetSizes)
}
