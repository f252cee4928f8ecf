package similarity

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// epsilon keeps flat sequences and zero prices finite.
const epsilon = 1e-8

// shapePoints is the number of normalized samples in a feature vector.
const shapePoints = 8

// featureDims is slope, volatility and the shape samples.
const featureDims = 2 + shapePoints

// ZNormalize rescales seq to zero mean and unit population deviation so
// only its shape remains.
func ZNormalize(seq []float64) []float64 {
	mean, std := stat.PopMeanStdDev(seq, nil)
	out := make([]float64, len(seq))
	for i, v := range seq {
		out[i] = (v - mean) / (std + epsilon)
	}
	return out
}

// Features is the coarse search vector of seq: the regression slope of
// the normalized shape and the deviation of simple returns (both scaled
// by 100), followed by eight evenly spaced normalized samples. seq needs
// at least two points.
func Features(seq []float64) []float64 {
	norm := ZNormalize(seq)
	x := make([]float64, len(norm))
	for i := range x {
		x[i] = float64(i)
	}
	_, slope := stat.LinearRegression(x, norm, nil, false)

	returns := make([]float64, len(seq)-1)
	for i := 1; i < len(seq); i++ {
		returns[i-1] = (seq[i] - seq[i-1]) / (seq[i-1] + epsilon)
	}
	_, vol := stat.PopMeanStdDev(returns, nil)

	f := make([]float64, 0, featureDims)
	f = append(f, slope*100, vol*100)
	for _, i := range sampleIndices(len(norm), shapePoints) {
		f = append(f, norm[i])
	}
	return f
}

// sampleIndices picks k indices spread evenly over [0, n-1], rounding down.
func sampleIndices(n, k int) []int {
	out := make([]int, k)
	for j := range out {
		out[j] = j * (n - 1) / (k - 1)
	}
	return out
}

// Resample linearly interpolates seq onto n evenly spaced points. n must be
// at least 2.
func Resample(seq []float64, n int) []float64 {
	out := make([]float64, n)
	if len(seq) == n {
		copy(out, seq)
		return out
	}
	if len(seq) == 1 {
		for i := range out {
			out[i] = seq[0]
		}
		return out
	}
	last := len(seq) - 1
	for i := range out {
		pos := float64(i) * float64(last) / float64(n-1)
		lo := int(pos)
		if lo >= last {
			out[i] = seq[last]
			continue
		}
		frac := pos - float64(lo)
		out[i] = seq[lo] + frac*(seq[lo+1]-seq[lo])
	}
	return out
}

// DTW is the dynamic time warping distance between a and b with absolute
// difference as the step cost.
func DTW(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	prev := make([]float64, len(b)+1)
	curr := make([]float64, len(b)+1)
	for j := range prev {
		prev[j] = math.Inf(1)
	}
	prev[0] = 0

	for i := 1; i <= len(a); i++ {
		curr[0] = math.Inf(1)
		for j := 1; j <= len(b); j++ {
			cost := math.Abs(a[i-1] - b[j-1])
			curr[j] = cost + math.Min(prev[j], math.Min(curr[j-1], prev[j-1]))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
