package engine

import (
	"fmt"
	"math"
	"sort"
)

// LoudnessInfo carries the EBU R128 measurements for one analysis pass.
// Integrated may be -Inf when no block passes the absolute gate (silence).
type LoudnessInfo struct {
	Integrated float64   // LUFS
	Range      float64   // LU
	Momentary  []float64 // LUFS per 400 ms window, 100 ms hop
	ShortTerm  []float64 // LUFS per 3 s window, 1 s spacing
}

// Gating constants from ITU-R BS.1770-4 and EBU Tech 3342.
const (
	absoluteGate  = -70.0 // LUFS, blocks below are never counted
	relativeGate  = -10.0 // LU below the first-stage mean, integrated
	rangeGate     = -20.0 // LU below the mean, loudness range
	energyOffset  = -0.691
	momentaryWin  = 0.400 // seconds
	momentaryHop  = 0.100
	shortTermWin  = 3.0
	shortTermHop  = 0.100
	rangeLoPctile = 0.10
	rangeHiPctile = 0.95
)

// Loudness measures integrated loudness, loudness range and the momentary
// and short-term series of a stereo pair per ITU-R BS.1770-4. Mono input is
// accepted by passing the same slice for both channels; the caller is
// responsible for channel weighting beyond L/R (surround is out of scope).
func (e *Engine) Loudness(left, right []float64, sampleRate int) (LoudnessInfo, error) {
	if sampleRate <= 0 {
		return LoudnessInfo{}, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(left) == 0 && len(right) == 0 {
		return LoudnessInfo{}, fmt.Errorf("no samples to measure")
	}

	wl := kWeight(left, sampleRate)
	wr := kWeight(right, sampleRate)

	momentary := windowLoudness(wl, wr, sampleRate, momentaryWin, momentaryHop)
	shortTerm := windowLoudness(wl, wr, sampleRate, shortTermWin, shortTermHop)

	info := LoudnessInfo{
		Integrated: gatedLoudness(momentary),
		Range:      loudnessRange(shortTerm),
		Momentary:  momentary,
		ShortTerm:  decimate(shortTerm, 10), // 100 ms hop -> 1 s spacing
	}
	return info, nil
}

// biquad is a transposed direct form II second-order section.
type biquad struct {
	b0, b1, b2, a1, a2 float64
}

func (f *biquad) process(x []float64) []float64 {
	out := make([]float64, len(x))
	var z1, z2 float64
	for i, s := range x {
		y := f.b0*s + z1
		z1 = f.b1*s - f.a1*y + z2
		z2 = f.b2*s - f.a2*y
		out[i] = y
	}
	return out
}

// kWeightingFilters designs the two-stage K-weighting filter (high-shelf
// head model plus high-pass) for an arbitrary sample rate by bilinear
// transform of the analog prototype behind the BS.1770 48 kHz reference
// coefficients.
func kWeightingFilters(sampleRate int) (shelf, highpass biquad) {
	fs := float64(sampleRate)

	// Stage 1: ~4 dB high shelf modelling the acoustic effect of the head.
	f0 := 1681.974450955533
	gain := 3.999843853973347
	q := 0.7071752369554196

	k := math.Tan(math.Pi * f0 / fs)
	vh := math.Pow(10, gain/20)
	vb := math.Pow(vh, 0.4996667741545416)
	a0 := 1 + k/q + k*k
	shelf = biquad{
		b0: (vh + vb*k/q + k*k) / a0,
		b1: 2 * (k*k - vh) / a0,
		b2: (vh - vb*k/q + k*k) / a0,
		a1: 2 * (k*k - 1) / a0,
		a2: (1 - k/q + k*k) / a0,
	}

	// Stage 2: high-pass at ~38 Hz removing inaudible rumble from the
	// energy measure.
	f0 = 38.13547087602444
	q = 0.5003270373238773
	k = math.Tan(math.Pi * f0 / fs)
	a0 = 1 + k/q + k*k
	highpass = biquad{
		b0: 1,
		b1: -2,
		b2: 1,
		a1: 2 * (k*k - 1) / a0,
		a2: (1 - k/q + k*k) / a0,
	}
	return shelf, highpass
}

func validateWeighting(sampleRate int) error {
	shelf, hp := kWeightingFilters(sampleRate)
	for _, c := range []float64{shelf.b0, shelf.b1, shelf.b2, shelf.a1, shelf.a2, hp.a1, hp.a2} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("non-finite coefficient")
		}
	}
	return nil
}

func kWeight(samples []float64, sampleRate int) []float64 {
	shelf, hp := kWeightingFilters(sampleRate)
	return hp.process(shelf.process(samples))
}

// windowLoudness slices the weighted channels into overlapping windows and
// returns the block loudness series in LUFS. Windows that do not fit are
// dropped; a signal shorter than one window yields an empty series.
func windowLoudness(left, right []float64, sampleRate int, winSecs, hopSecs float64) []float64 {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	win := int(winSecs * float64(sampleRate))
	hop := int(hopSecs * float64(sampleRate))
	if win <= 0 || hop <= 0 || n < win {
		return nil
	}

	// Prefix sums of squared samples keep the block energy O(1) per block.
	prefixL := prefixSquares(left[:n])
	prefixR := prefixSquares(right[:n])

	var series []float64
	for start := 0; start+win <= n; start += hop {
		end := start + win
		msL := (prefixL[end] - prefixL[start]) / float64(win)
		msR := (prefixR[end] - prefixR[start]) / float64(win)
		series = append(series, blockLoudness(msL+msR))
	}
	return series
}

func prefixSquares(x []float64) []float64 {
	prefix := make([]float64, len(x)+1)
	for i, s := range x {
		prefix[i+1] = prefix[i] + s*s
	}
	return prefix
}

func blockLoudness(energy float64) float64 {
	if energy <= 0 {
		return math.Inf(-1)
	}
	return energyOffset + 10*math.Log10(energy)
}

func blockEnergy(loudness float64) float64 {
	return math.Pow(10, (loudness-energyOffset)/10)
}

// gatedLoudness applies the two-stage gating of BS.1770-4: an absolute
// -70 LUFS gate, then a relative gate 10 LU below the mean of the surviving
// blocks. Returns -Inf when nothing survives.
func gatedLoudness(blocks []float64) float64 {
	sum, count := 0.0, 0
	for _, l := range blocks {
		if l >= absoluteGate {
			sum += blockEnergy(l)
			count++
		}
	}
	if count == 0 {
		return math.Inf(-1)
	}

	threshold := blockLoudness(sum/float64(count)) + relativeGate
	sum, count = 0.0, 0
	for _, l := range blocks {
		if l >= absoluteGate && l >= threshold {
			sum += blockEnergy(l)
			count++
		}
	}
	if count == 0 {
		return math.Inf(-1)
	}
	return blockLoudness(sum / float64(count))
}

// loudnessRange computes LRA per EBU Tech 3342: short-term blocks gated
// absolutely at -70 LUFS and relatively at 20 LU below the mean, then the
// spread between the 10th and 95th percentiles.
func loudnessRange(shortTerm []float64) float64 {
	var gated []float64
	sum := 0.0
	for _, l := range shortTerm {
		if l >= absoluteGate {
			gated = append(gated, l)
			sum += blockEnergy(l)
		}
	}
	if len(gated) < 2 {
		return 0
	}

	threshold := blockLoudness(sum/float64(len(gated))) + rangeGate
	var survivors []float64
	for _, l := range gated {
		if l >= threshold {
			survivors = append(survivors, l)
		}
	}
	if len(survivors) < 2 {
		return 0
	}

	sort.Float64s(survivors)
	lo := percentile(survivors, rangeLoPctile)
	hi := percentile(survivors, rangeHiPctile)
	return hi - lo
}

// percentile interpolates linearly within a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	i := int(pos)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(i)
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}

func decimate(series []float64, stride int) []float64 {
	if stride <= 1 {
		return series
	}
	var out []float64
	for i := 0; i < len(series); i += stride {
		out = append(out, series[i])
	}
	return out
}
