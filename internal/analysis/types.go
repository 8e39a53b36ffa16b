// Package analysis contains the measurement pipeline, the tempo/key
// fallback cascade and the orchestrator that runs both on a background
// computation goroutine with progress and partial-result streaming.
package analysis

import (
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/audio"
)

// Phase tags one stage of an analysis call for progress reporting.
type Phase string

const (
	PhaseLoudness Phase = "loudness"
	PhaseTruePeak Phase = "truepeak"
	PhaseStereo   Phase = "stereo"
	PhaseQuality  Phase = "quality"
	PhaseTempo    Phase = "tempo"
	PhaseKey      Phase = "key"
	PhaseDone     Phase = "done"
)

// Progress is one progress update. Percent is 0-100 and never decreases
// within a single call; it reaches exactly 100 on the done phase.
type Progress struct {
	Phase   Phase
	Percent int
	Label   string
}

// LoudnessResult carries the loudness and peak measurements.
type LoudnessResult struct {
	Integrated float64   // LUFS, -Inf when not computable
	Range      float64   // LU
	TruePeak   float64   // dBTP, -Inf for silence
	Momentary  []float64 // LUFS per 400 ms window
	ShortTerm  []float64 // LUFS per 3 s window
}

// StereoResult carries the mid/side width ratio: 0 is mono, typical
// material sits below ~1. Unbounded above in principle; display clamping is
// a presentation concern.
type StereoResult struct {
	Width float64
}

// QualityResult carries the head/tail silence measurements and the mains
// hum check.
type QualityResult struct {
	FirstSample  float64
	LastSample   float64
	FirstIsZero  bool
	LastIsZero   bool
	HeadSilence  float64 // seconds
	TailSilence  float64 // seconds
	HumLevel     float64 // dBFS at the mains frequency or its 2nd harmonic
	MainsHz      int
}

// BpmKeyResult carries tempo and key. Zero/empty values mean undetermined,
// which is a valid outcome, not a failure.
type BpmKeyResult struct {
	BPM           float64
	BPMConfidence float64 // tier-dependent scale, 0 when undetermined
	Key           string
	Scale         string // "major" or "minor"
	Strength      float64 // 0-1
}

// AnalysisResult aggregates everything measured for one file. It is built
// incrementally: each partial fragment replaces the previous value of its
// section, earlier sections stay valid if a later stage fails.
type AnalysisResult struct {
	File     audio.FileInfo
	Loudness *LoudnessResult
	Stereo   *StereoResult
	Quality  *QualityResult
}

// Fragment is one incremental piece of an AnalysisResult.
type Fragment struct {
	Loudness *LoudnessResult
	Stereo   *StereoResult
	Quality  *QualityResult
}

// Merge folds a fragment into the result, returning the updated copy so the
// accumulator can be replaced atomically by the caller.
func (r AnalysisResult) Merge(f Fragment) AnalysisResult {
	if f.Loudness != nil {
		r.Loudness = f.Loudness
	}
	if f.Stereo != nil {
		r.Stereo = f.Stereo
	}
	if f.Quality != nil {
		r.Quality = f.Quality
	}
	return r
}
