package analysis

import (
	"fmt"
	"math"

	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/dsp"
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/engine"
)

// LoudnessMeter is the slice of the engine the pipeline needs.
type LoudnessMeter interface {
	Loudness(left, right []float64, sampleRate int) (engine.LoudnessInfo, error)
}

// Pipeline sequences one full measurement pass: loudness, true peak, stereo
// width and the silence/hum quality checks. Each completed measurement is
// emitted as a partial fragment so callers can render results while later
// stages are still running.
type Pipeline struct {
	meter   LoudnessMeter
	mainsHz int
}

// NewPipeline wires a pipeline to a loudness meter. mainsHz feeds the hum
// check and is normally taken from the local grid (50 or 60).
func NewPipeline(meter LoudnessMeter, mainsHz int) *Pipeline {
	if mainsHz != 60 {
		mainsHz = 50
	}
	return &Pipeline{meter: meter, mainsHz: mainsHz}
}

// Progress milestones per phase. The loudness pass dominates the runtime so
// it owns the largest share of the bar.
const (
	pctLoudnessStart = 0
	pctLoudnessDone  = 45
	pctTruePeakDone  = 65
	pctStereoDone    = 80
	pctQualityDone   = 95
	pctDone          = 100
)

// Run executes the pass over a stereo pair. Mono callers pass the same
// slice twice. A loudness engine failure is contained: the loudness section
// falls back to its undetermined defaults and the pass continues. Only an
// empty input fails the call.
func (p *Pipeline) Run(left, right []float64, sampleRate int, onProgress func(Progress), onPartial func(Fragment)) error {
	if len(left) == 0 || sampleRate <= 0 {
		return fmt.Errorf("nothing to analyze: empty buffer")
	}

	emit := func(phase Phase, percent int, label string) {
		if onProgress != nil {
			onProgress(Progress{Phase: phase, Percent: percent, Label: label})
		}
	}
	partial := func(f Fragment) {
		if onPartial != nil {
			onPartial(f)
		}
	}

	// Loudness, delegated to the engine. Failure here is a per-algorithm
	// failure: fall back to undetermined defaults and keep going.
	emit(PhaseLoudness, pctLoudnessStart, "Measuring loudness")
	loudness := &LoudnessResult{Integrated: math.Inf(-1)}
	if info, err := p.meter.Loudness(left, right, sampleRate); err == nil {
		loudness.Integrated = info.Integrated
		loudness.Range = info.Range
		loudness.Momentary = info.Momentary
		loudness.ShortTerm = info.ShortTerm
	}
	emit(PhaseTruePeak, pctLoudnessDone, "Estimating true peak")

	loudness.TruePeak = dsp.TruePeak(left, right)
	partial(Fragment{Loudness: loudness})
	emit(PhaseStereo, pctTruePeakDone, "Measuring stereo width")

	stereo := &StereoResult{Width: dsp.StereoWidth(left, right)}
	partial(Fragment{Stereo: stereo})
	emit(PhaseQuality, pctStereoDone, "Checking silence and hum")

	silence := dsp.AnalyzeSilence(left, sampleRate)
	quality := &QualityResult{
		FirstSample: silence.FirstSample,
		LastSample:  silence.LastSample,
		FirstIsZero: silence.FirstIsZero,
		LastIsZero:  silence.LastIsZero,
		HeadSilence: silence.HeadDuration,
		TailSilence: silence.TailDuration,
		HumLevel:    dsp.HumLevel(left, sampleRate, p.mainsHz),
		MainsHz:     p.mainsHz,
	}
	partial(Fragment{Quality: quality})
	emit(PhaseQuality, pctQualityDone, "Quality checks complete")

	emit(PhaseDone, pctDone, "Analysis complete")
	return nil
}
