package dsp

import "math"

// StereoWidth computes the mid/side energy ratio RMS(side)/RMS(mid) over
// the common length of the two channels. 0 means mono; typical stereo
// material sits below ~1. A degenerate signal with zero mid energy is
// defined as width 0 rather than dividing by zero.
func StereoWidth(left, right []float64) float64 {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	if n == 0 {
		return 0
	}

	var midSum, sideSum float64
	for i := 0; i < n; i++ {
		mid := (left[i] + right[i]) / 2
		side := (left[i] - right[i]) / 2
		midSum += mid * mid
		sideSum += side * side
	}

	midRMS := math.Sqrt(midSum / float64(n))
	if midRMS == 0 {
		return 0
	}
	sideRMS := math.Sqrt(sideSum / float64(n))
	return sideRMS / midRMS
}
