package dsp

import "math"

// sine generates a sine wave at the given frequency and level in dBFS.
// phase is in radians and lets tests place inter-sample peaks off the
// sample grid.
func sine(freq, levelDBFS, durationSecs float64, sampleRate int, phase float64) []float64 {
	n := int(durationSecs * float64(sampleRate))
	amp := math.Pow(10, levelDBFS/20)
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = amp * math.Sin(2*math.Pi*freq*t+phase)
	}
	return out
}

// silence generates a run of exact zeros.
func silence(durationSecs float64, sampleRate int) []float64 {
	return make([]float64, int(durationSecs*float64(sampleRate)))
}
