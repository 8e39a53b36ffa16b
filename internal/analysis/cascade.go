package analysis

import (
	"errors"

	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/engine"
)

// TempoKeyAnalyzer is the slice of the engine the cascade needs: the two
// tempo estimators, the primary key extractor and the spectral primitives
// behind the manual key fallback.
type TempoKeyAnalyzer interface {
	RhythmExtractor(samples []float64, sampleRate int, opts engine.RhythmOptions) (bpm, confidence float64, err error)
	OnsetTempo(samples []float64, sampleRate int) (float64, error)
	KeyExtractor(samples []float64, sampleRate int, params engine.KeyParams) (engine.KeyEstimate, error)
	Windowing(frame []float64, name string) []float64
	Spectrum(frame []float64) []float64
	SpectralPeaks(spectrum []float64, sampleRate int, params engine.PeakParams) []engine.Peak
	HPCP(peaks []engine.Peak, params engine.HPCPParams) ([]float64, error)
	EstimateKey(profile []float64) (engine.KeyEstimate, error)
}

// Cascade runs tempo and key detection through ordered tiers with local
// error containment: a tier failure is logged and the next tier runs.
// Exhausting every tier yields zero/empty defaults, which is a valid
// "undetermined" result, never an error.
type Cascade struct {
	eng  TempoKeyAnalyzer
	logf func(format string, args ...interface{})
}

// NewCascade wires the cascade to an analyzer. logf receives tier failure
// diagnostics and may be nil.
func NewCascade(eng TempoKeyAnalyzer, logf func(format string, args ...interface{})) *Cascade {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Cascade{eng: eng, logf: logf}
}

// progressStride bounds how often the key fallback reports progress: one
// update per this many frames keeps message-passing overhead off the hot
// loop.
const progressStride = 32

// Run measures tempo and key on a mono signal. It never fails.
func (c *Cascade) Run(samples []float64, sampleRate int, onProgress func(Progress)) BpmKeyResult {
	emit := func(phase Phase, percent int, label string) {
		if onProgress != nil {
			onProgress(Progress{Phase: phase, Percent: percent, Label: label})
		}
	}

	result := BpmKeyResult{}

	emit(PhaseTempo, 0, "Detecting tempo")
	result.BPM, result.BPMConfidence = c.detectTempo(samples, sampleRate)
	emit(PhaseTempo, 45, "Tempo detection complete")

	emit(PhaseKey, 50, "Detecting key")
	result.Key, result.Scale, result.Strength = c.detectKey(samples, sampleRate, emit)
	emit(PhaseDone, 100, "Tempo and key analysis complete")

	return result
}

// detectTempo tries the multi-feature rhythm extractor first, then the
// simpler onset estimator. The fallback reports no confidence.
func (c *Cascade) detectTempo(samples []float64, sampleRate int) (float64, float64) {
	bpm, confidence, err := c.eng.RhythmExtractor(samples, sampleRate, engine.DefaultRhythmOptions())
	if err == nil {
		return bpm, confidence
	}
	c.logf("rhythm extractor failed, trying onset estimator: %v", err)

	bpm, err = c.eng.OnsetTempo(samples, sampleRate)
	if err == nil {
		return bpm, 0
	}
	c.logf("onset tempo estimator failed, tempo undetermined: %v", err)
	return 0, 0
}

// detectKey tries the tuned key extractor first, then the manual per-frame
// HPCP fallback.
func (c *Cascade) detectKey(samples []float64, sampleRate int, emit func(Phase, int, string)) (string, string, float64) {
	est, err := c.eng.KeyExtractor(samples, sampleRate, engine.DefaultKeyParams())
	if err == nil {
		return est.Key, est.Scale, est.Strength
	}
	c.logf("key extractor failed, trying manual HPCP fallback: %v", err)

	est, err = c.keyFallback(samples, sampleRate, emit)
	if err == nil {
		return est.Key, est.Scale, est.Strength
	}
	c.logf("HPCP fallback failed, key undetermined: %v", err)
	return "", "", 0
}

// keyFallback walks fixed-size overlapping frames across the whole signal,
// windows each one, extracts spectral peaks, folds them into a per-frame
// HPCP and averages the vectors across all valid frames before running the
// standalone key estimation step on the mean profile.
func (c *Cascade) keyFallback(samples []float64, sampleRate int, emit func(Phase, int, string)) (engine.KeyEstimate, error) {
	params := engine.DefaultKeyParams()
	peakParams := engine.PeakParams{
		MaxPeaks:     params.MaxPeaks,
		Threshold:    params.PeakThreshold,
		MinFrequency: params.MinFrequency,
		MaxFrequency: params.MaxFrequency,
	}
	hpcpParams := engine.HPCPParams{Size: params.HPCPSize, Reference: params.Tuning}

	totalFrames := 0
	if len(samples) >= params.FrameSize {
		totalFrames = (len(samples)-params.FrameSize)/params.HopSize + 1
	}

	accumulated := make([]float64, params.HPCPSize)
	valid := 0
	frame := 0
	for start := 0; start+params.FrameSize <= len(samples); start += params.HopSize {
		windowed := c.eng.Windowing(samples[start:start+params.FrameSize], params.WindowType)
		peaks := c.eng.SpectralPeaks(c.eng.Spectrum(windowed), sampleRate, peakParams)
		if len(peaks) > 0 {
			profile, err := c.eng.HPCP(peaks, hpcpParams)
			if err == nil {
				for i, v := range profile {
					accumulated[i] += v
				}
				valid++
			}
		}

		frame++
		if frame%progressStride == 0 && totalFrames > 0 {
			// Map fallback progress onto the 55..95 band of the key phase.
			percent := 55 + 40*frame/totalFrames
			emit(PhaseKey, percent, "Analyzing harmonic profile")
		}
	}

	if valid == 0 {
		return engine.KeyEstimate{}, errNoTonalFrames
	}
	for i := range accumulated {
		accumulated[i] /= float64(valid)
	}
	return c.eng.EstimateKey(accumulated)
}

var errNoTonalFrames = errors.New("no frames produced spectral peaks")
