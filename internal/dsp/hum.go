package dsp

import "math"

// HumLevel measures the energy at the mains frequency and its second
// harmonic with a Goertzel filter and returns the louder of the two in
// dBFS. mainsHz is 50 or 60 depending on the local grid. Returns -Inf for
// silence or an empty input.
func HumLevel(samples []float64, sampleRate, mainsHz int) float64 {
	if len(samples) == 0 || sampleRate <= 0 || mainsHz <= 0 {
		return math.Inf(-1)
	}

	fundamental := goertzelRMS(samples, sampleRate, float64(mainsHz))
	harmonic := goertzelRMS(samples, sampleRate, float64(2*mainsHz))

	level := fundamental
	if harmonic > level {
		level = harmonic
	}
	if level == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(level)
}

// goertzelRMS runs a single-bin Goertzel filter over the whole signal and
// returns the RMS amplitude of the target frequency component.
func goertzelRMS(samples []float64, sampleRate int, freq float64) float64 {
	n := len(samples)
	omega := 2 * math.Pi * freq / float64(sampleRate)
	coeff := 2 * math.Cos(omega)

	var s0, s1, s2 float64
	for _, x := range samples {
		s0 = x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	// Normalize the bin magnitude to an RMS amplitude in [0, 1].
	return math.Sqrt(power) * math.Sqrt2 / float64(n)
}
