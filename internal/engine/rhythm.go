package engine

import (
	"fmt"
	"math"
)

// RhythmOptions bounds the primary tempo estimator.
type RhythmOptions struct {
	MaxBPM        float64 // upper tempo bound
	MinConfidence float64 // reject estimates below this normalized confidence
}

// DefaultRhythmOptions matches the values the analysis cascade uses.
func DefaultRhythmOptions() RhythmOptions {
	return RhythmOptions{MaxBPM: 208, MinConfidence: 0.15}
}

// Tempo detection frame layout. 1024/512 at 44.1 kHz gives an onset
// envelope rate of ~86 Hz, enough lag resolution down to 40 BPM.
const (
	tempoFrameSize = 1024
	tempoHopSize   = 512
	minBPM         = 40.0
)

// RhythmExtractor is the primary tempo tier: a spectral-flux onset novelty
// curve autocorrelated over the plausible beat-period lag range. Confidence
// is the normalized autocorrelation at the winning lag in [0, 1]. Fails when
// the signal is too short or the winning peak falls below MinConfidence.
func (e *Engine) RhythmExtractor(samples []float64, sampleRate int, opts RhythmOptions) (float64, float64, error) {
	if opts.MaxBPM <= minBPM {
		return 0, 0, fmt.Errorf("max BPM %.0f must exceed %.0f", opts.MaxBPM, minBPM)
	}
	novelty, err := e.spectralFlux(samples)
	if err != nil {
		return 0, 0, err
	}

	envelopeRate := float64(sampleRate) / tempoHopSize
	bpm, confidence, err := tempoFromNovelty(novelty, envelopeRate, opts.MaxBPM)
	if err != nil {
		return 0, 0, err
	}
	if confidence < opts.MinConfidence {
		return 0, 0, fmt.Errorf("tempo confidence %.3f below threshold %.3f", confidence, opts.MinConfidence)
	}
	return bpm, confidence, nil
}

// OnsetTempo is the secondary tempo tier: frame energy flux autocorrelated
// the same way, with no spectral analysis and no confidence reported. Used
// when the primary extractor fails.
func (e *Engine) OnsetTempo(samples []float64, sampleRate int) (float64, error) {
	frames := (len(samples) - tempoFrameSize) / tempoHopSize
	if frames < 4 {
		return 0, fmt.Errorf("signal too short for onset analysis")
	}

	energy := make([]float64, frames)
	for f := 0; f < frames; f++ {
		start := f * tempoHopSize
		sum := 0.0
		for _, s := range samples[start : start+tempoFrameSize] {
			sum += s * s
		}
		energy[f] = sum
	}

	novelty := make([]float64, frames)
	for f := 1; f < frames; f++ {
		if d := energy[f] - energy[f-1]; d > 0 {
			novelty[f] = d
		}
	}

	envelopeRate := float64(sampleRate) / tempoHopSize
	bpm, _, err := tempoFromNovelty(novelty, envelopeRate, DefaultRhythmOptions().MaxBPM)
	return bpm, err
}

// spectralFlux computes a half-wave rectified spectral flux novelty curve.
func (e *Engine) spectralFlux(samples []float64) ([]float64, error) {
	frames := (len(samples) - tempoFrameSize) / tempoHopSize
	if frames < 4 {
		return nil, fmt.Errorf("signal too short for rhythm analysis")
	}

	novelty := make([]float64, frames)
	var prev []float64
	for f := 0; f < frames; f++ {
		start := f * tempoHopSize
		windowed := e.Windowing(samples[start:start+tempoFrameSize], "hann")
		mags := e.Spectrum(windowed)
		if prev != nil {
			flux := 0.0
			for i := range mags {
				if d := mags[i] - prev[i]; d > 0 {
					flux += d
				}
			}
			novelty[f] = flux
		}
		prev = mags
	}
	return novelty, nil
}

// tempoFromNovelty autocorrelates the novelty curve over the lag range
// implied by [minBPM, maxBPM], refines the winning lag parabolically and
// converts it to BPM.
func tempoFromNovelty(novelty []float64, envelopeRate, maxBPM float64) (float64, float64, error) {
	mean := 0.0
	for _, v := range novelty {
		mean += v
	}
	mean /= float64(len(novelty))
	if mean == 0 {
		return 0, 0, fmt.Errorf("flat novelty curve, no onsets detected")
	}

	centered := make([]float64, len(novelty))
	var norm float64
	for i, v := range novelty {
		centered[i] = v - mean
		norm += centered[i] * centered[i]
	}
	if norm == 0 {
		return 0, 0, fmt.Errorf("flat novelty curve, no onsets detected")
	}

	minLag := int(envelopeRate * 60 / maxBPM)
	maxLag := int(envelopeRate * 60 / minBPM)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(centered) {
		maxLag = len(centered) - 1
	}
	if minLag >= maxLag {
		return 0, 0, fmt.Errorf("signal too short for lag range")
	}

	autocorr := func(lag int) float64 {
		sum := 0.0
		for i := lag; i < len(centered); i++ {
			sum += centered[i] * centered[i-lag]
		}
		return sum / norm
	}

	bestLag, bestVal := 0, math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		if v := autocorr(lag); v > bestVal {
			bestLag, bestVal = lag, v
		}
	}
	if bestVal <= 0 {
		return 0, 0, fmt.Errorf("no periodicity in novelty curve")
	}

	// Parabolic refinement around the winning lag.
	lag := float64(bestLag)
	if bestLag > minLag && bestLag < maxLag {
		alpha := autocorr(bestLag - 1)
		gamma := autocorr(bestLag + 1)
		denom := alpha - 2*bestVal + gamma
		if denom != 0 {
			lag += 0.5 * (alpha - gamma) / denom
		}
	}

	confidence := bestVal
	if confidence > 1 {
		confidence = 1
	}
	return 60 * envelopeRate / lag, confidence, nil
}
