// Package dsp implements the measurement primitives the analysis pipeline
// does not delegate to the engine: true-peak estimation, mid/side stereo
// width, silence boundary detection and mains hum metering.
package dsp

import "math"

// interpTrigger gates the Hermite interpolation at -3 dB below the coarse
// peak. Inter-sample overshoot only happens in the neighbourhood of samples
// that are already near the peak, so the threshold bounds the interpolation
// cost to the peak regions instead of 4x the whole signal.
const interpTrigger = 0.707

// TruePeak estimates the true peak of a stereo pair in dBTP using 4x
// oversampling by cubic Hermite interpolation. Silence returns -Inf.
func TruePeak(left, right []float64) float64 {
	coarse := coarsePeak(left)
	if r := coarsePeak(right); r > coarse {
		coarse = r
	}
	if coarse == 0 {
		return math.Inf(-1)
	}

	threshold := coarse * interpTrigger
	maxAbs := coarse
	for _, ch := range [][]float64{left, right} {
		if p := interpolatedPeak(ch, threshold); p > maxAbs {
			maxAbs = p
		}
	}

	return 20 * math.Log10(maxAbs)
}

// coarsePeak returns the sample-domain maximum absolute amplitude.
func coarsePeak(samples []float64) float64 {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// interpolatedPeak evaluates a cubic Hermite interpolant at fractional
// offsets 0.25, 0.5 and 0.75 between every pair of samples whose start or
// end value exceeds the trigger threshold. Interior positions only: one
// sample of left context and two of right context are required.
func interpolatedPeak(samples []float64, threshold float64) float64 {
	peak := 0.0
	for i := 1; i+2 < len(samples); i++ {
		if math.Abs(samples[i]) < threshold && math.Abs(samples[i+1]) < threshold {
			continue
		}
		y0, y1, y2, y3 := samples[i-1], samples[i], samples[i+1], samples[i+2]
		for _, t := range [3]float64{0.25, 0.5, 0.75} {
			if a := math.Abs(hermite(y0, y1, y2, y3, t)); a > peak {
				peak = a
			}
		}
	}
	return peak
}

// hermite evaluates a four-point Catmull-Rom cubic at fraction t between
// the middle two points.
func hermite(y0, y1, y2, y3, t float64) float64 {
	c0 := y1
	c1 := 0.5 * (y2 - y0)
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c3 := 0.5*(y3-y0) + 1.5*(y1-y2)
	return ((c3*t+c2)*t+c1)*t + c0
}
