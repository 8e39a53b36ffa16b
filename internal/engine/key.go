package engine

import (
	"fmt"
	"math"
)

// KeyParams is the tuned parameter set for the primary key extractor.
type KeyParams struct {
	FrameSize          int
	HopSize            int
	HPCPSize           int
	MinFrequency       float64 // Hz
	MaxFrequency       float64 // Hz
	MaxPeaks           int
	PeakThreshold      float64
	Tuning             float64 // A4 reference, Hz
	DetuningCorrection bool
	Profile            string // "temperley" or "krumhansl"
	WindowType         string
}

// DefaultKeyParams returns the production parameter set. The frequency
// band deliberately stops at 3500 Hz: above that, partials contribute more
// smearing than pitch class evidence.
func DefaultKeyParams() KeyParams {
	return KeyParams{
		FrameSize:          4096,
		HopSize:            2048,
		HPCPSize:           12,
		MinFrequency:       25,
		MaxFrequency:       3500,
		MaxPeaks:           60,
		PeakThreshold:      0.0001,
		Tuning:             440,
		DetuningCorrection: true,
		Profile:            "temperley",
		WindowType:         "hann",
	}
}

// KeyEstimate is a detected musical key with a 0-1 strength.
type KeyEstimate struct {
	Key      string
	Scale    string // "major" or "minor"
	Strength float64
}

var pitchClassNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

type keyProfilePair struct {
	major [12]float64
	minor [12]float64
}

// buildKeyProfiles assembles the tone profile tables used for key
// correlation. Krumhansl & Kessler (1982) probe-tone ratings and the
// Temperley (1999) revision.
func buildKeyProfiles() map[string]keyProfilePair {
	return map[string]keyProfilePair{
		"krumhansl": {
			major: [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88},
			minor: [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17},
		},
		"temperley": {
			major: [12]float64{5.0, 2.0, 3.5, 2.0, 4.5, 4.0, 2.0, 4.5, 2.0, 3.5, 1.5, 4.0},
			minor: [12]float64{5.0, 2.0, 3.5, 4.5, 2.0, 4.0, 2.0, 4.5, 3.5, 2.0, 1.5, 4.0},
		},
	}
}

// KeyExtractor is the primary key tier: frame the signal, accumulate an
// averaged HPCP across all frames that produce spectral peaks, then match
// it against the profile tables. Fails on signals shorter than one frame or
// with no tonal content.
func (e *Engine) KeyExtractor(samples []float64, sampleRate int, params KeyParams) (KeyEstimate, error) {
	if len(samples) < params.FrameSize {
		return KeyEstimate{}, fmt.Errorf("signal shorter than one analysis frame (%d samples)", params.FrameSize)
	}
	if sampleRate <= 0 {
		return KeyEstimate{}, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	peakParams := PeakParams{
		MaxPeaks:     params.MaxPeaks,
		Threshold:    params.PeakThreshold,
		MinFrequency: params.MinFrequency,
		MaxFrequency: params.MaxFrequency,
	}

	var framePeaks [][]Peak
	for start := 0; start+params.FrameSize <= len(samples); start += params.HopSize {
		windowed := e.Windowing(samples[start:start+params.FrameSize], params.WindowType)
		peaks := e.SpectralPeaks(e.Spectrum(windowed), sampleRate, peakParams)
		if len(peaks) > 0 {
			framePeaks = append(framePeaks, peaks)
		}
	}
	if len(framePeaks) == 0 {
		return KeyEstimate{}, fmt.Errorf("no tonal content detected")
	}

	tuning := params.Tuning
	if params.DetuningCorrection {
		tuning = correctedTuning(framePeaks, params.Tuning)
	}

	hpcpParams := HPCPParams{Size: params.HPCPSize, Reference: tuning}
	accumulated := make([]float64, params.HPCPSize)
	for _, peaks := range framePeaks {
		profile, err := e.HPCP(peaks, hpcpParams)
		if err != nil {
			return KeyEstimate{}, err
		}
		for i, v := range profile {
			accumulated[i] += v
		}
	}
	for i := range accumulated {
		accumulated[i] /= float64(len(framePeaks))
	}

	return e.estimateKeyWithProfile(accumulated, params.Profile)
}

// correctedTuning estimates the global tuning deviation in cents by taking
// the magnitude-weighted mean offset of all peaks from the nearest equal
// temperament pitch, then shifts the reference accordingly. Deviations
// beyond a quarter tone are left alone; that is ambiguity, not detuning.
func correctedTuning(framePeaks [][]Peak, reference float64) float64 {
	var weightedCents, weight float64
	for _, peaks := range framePeaks {
		for _, p := range peaks {
			if p.Frequency <= 0 {
				continue
			}
			semis := 12 * math.Log2(p.Frequency/reference)
			cents := 100 * (semis - math.Round(semis))
			weightedCents += cents * p.Magnitude
			weight += p.Magnitude
		}
	}
	if weight == 0 {
		return reference
	}
	cents := weightedCents / weight
	if math.Abs(cents) > 50 {
		return reference
	}
	return reference * math.Pow(2, cents/1200)
}

// EstimateKey matches an averaged pitch class profile against the default
// profile table. Used directly by the fallback key path, which averages its
// own HPCP frames first.
func (e *Engine) EstimateKey(profile []float64) (KeyEstimate, error) {
	return e.estimateKeyWithProfile(profile, DefaultKeyParams().Profile)
}

func (e *Engine) estimateKeyWithProfile(profile []float64, profileName string) (KeyEstimate, error) {
	if len(profile) != 12 {
		return KeyEstimate{}, fmt.Errorf("profile must have 12 bins, got %d", len(profile))
	}
	nonZero := false
	for _, v := range profile {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		return KeyEstimate{}, fmt.Errorf("empty pitch class profile")
	}

	profiles := e.profiles
	if profiles == nil {
		profiles = buildKeyProfiles()
	}
	pair, ok := profiles[profileName]
	if !ok {
		pair = profiles["temperley"]
	}

	best := KeyEstimate{Strength: math.Inf(-1)}
	for tonic := 0; tonic < 12; tonic++ {
		for _, scale := range []struct {
			name    string
			weights [12]float64
		}{{"major", pair.major}, {"minor", pair.minor}} {
			r := rotatedCorrelation(profile, scale.weights, tonic)
			if r > best.Strength {
				best = KeyEstimate{Key: pitchClassNames[tonic], Scale: scale.name, Strength: r}
			}
		}
	}

	if best.Strength <= 0 {
		return KeyEstimate{}, fmt.Errorf("no profile correlation above zero")
	}
	if best.Strength > 1 {
		best.Strength = 1
	}
	return best, nil
}

// rotatedCorrelation computes the Pearson correlation between the observed
// profile and a tone profile rotated so its tonic sits at the given pitch
// class.
func rotatedCorrelation(observed []float64, weights [12]float64, tonic int) float64 {
	var meanO, meanW float64
	for i := 0; i < 12; i++ {
		meanO += observed[i]
		meanW += weights[i]
	}
	meanO /= 12
	meanW /= 12

	var num, denO, denW float64
	for i := 0; i < 12; i++ {
		o := observed[i] - meanO
		w := weights[(i-tonic+12)%12] - meanW
		num += o * w
		denO += o * o
		denW += w * w
	}
	if denO == 0 || denW == 0 {
		return 0
	}
	return num / math.Sqrt(denO*denW)
}
