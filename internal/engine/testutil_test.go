package engine

import "math"

// testSine generates a sine at the given amplitude.
func testSine(freq, amp, durationSecs float64, sampleRate int) []float64 {
	n := int(durationSecs * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

// testTriad mixes three sines of equal amplitude.
func testTriad(f1, f2, f3, durationSecs float64, sampleRate int) []float64 {
	n := int(durationSecs * float64(sampleRate))
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = 0.2 * (math.Sin(2*math.Pi*f1*t) + math.Sin(2*math.Pi*f2*t) + math.Sin(2*math.Pi*f3*t))
	}
	return out
}

// testClickTrack generates decaying clicks at the given tempo.
func testClickTrack(bpm, durationSecs float64, sampleRate int) []float64 {
	n := int(durationSecs * float64(sampleRate))
	out := make([]float64, n)
	interval := int(60 / bpm * float64(sampleRate))
	for start := 0; start < n; start += interval {
		for i := 0; i < 256 && start+i < n; i++ {
			out[start+i] = 0.9 * math.Exp(-float64(i)/32)
		}
	}
	return out
}
