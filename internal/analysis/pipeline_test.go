package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/engine"
)

func testTone(freq, amp float64, n, sampleRate int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestPipelineRun(t *testing.T) {
	meter := &fakeMeter{info: engine.LoudnessInfo{
		Integrated: -14.2,
		Range:      4.5,
		ShortTerm:  []float64{-14.0, -14.4},
	}}
	p := NewPipeline(meter, 50)

	left := testTone(440, 0.5, 44100, 44100)
	right := testTone(880, 0.25, 44100, 44100)

	var progress []Progress
	var partials []Fragment
	err := p.Run(left, right, 44100,
		func(pr Progress) { progress = append(progress, pr) },
		func(f Fragment) { partials = append(partials, f) },
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Percent is monotone and finishes at exactly 100 on the done phase.
	last := -1
	for _, pr := range progress {
		if pr.Percent < last {
			t.Errorf("progress went backwards: %d after %d", pr.Percent, last)
		}
		last = pr.Percent
	}
	final := progress[len(progress)-1]
	if final.Percent != 100 || final.Phase != PhaseDone {
		t.Errorf("final progress = %d%% %s, want 100%% done", final.Percent, final.Phase)
	}
	for _, pr := range progress[:len(progress)-1] {
		if pr.Percent == 100 {
			t.Error("100%% reported before the done phase")
		}
	}

	// One fragment per section, in pipeline order.
	if len(partials) != 3 {
		t.Fatalf("got %d partials, want 3", len(partials))
	}
	if partials[0].Loudness == nil || partials[1].Stereo == nil || partials[2].Quality == nil {
		t.Fatalf("partials out of order: %+v", partials)
	}

	if partials[0].Loudness.Integrated != -14.2 {
		t.Errorf("Integrated = %.2f, want the meter's -14.2", partials[0].Loudness.Integrated)
	}
	if partials[0].Loudness.TruePeak > 0 || math.IsInf(partials[0].Loudness.TruePeak, -1) {
		t.Errorf("TruePeak = %.2f, want a finite negative level", partials[0].Loudness.TruePeak)
	}
	if partials[1].Stereo.Width <= 0 {
		t.Errorf("Width = %.3f, want > 0 for different channels", partials[1].Stereo.Width)
	}
	if partials[2].Quality.MainsHz != 50 {
		t.Errorf("MainsHz = %d, want 50", partials[2].Quality.MainsHz)
	}
}

func TestPipelineMeterFailureIsContained(t *testing.T) {
	meter := &fakeMeter{err: errors.New("filter blew up")}
	p := NewPipeline(meter, 60)

	left := testTone(440, 0.5, 22050, 44100)

	var partials []Fragment
	err := p.Run(left, left, 44100, nil,
		func(f Fragment) { partials = append(partials, f) },
	)
	if err != nil {
		t.Fatalf("Run failed: %v, want the meter failure contained", err)
	}

	if len(partials) != 3 {
		t.Fatalf("got %d partials, want all 3 despite the meter failure", len(partials))
	}
	loudness := partials[0].Loudness
	if !math.IsInf(loudness.Integrated, -1) {
		t.Errorf("Integrated = %.2f, want -Inf fallback", loudness.Integrated)
	}
	// True peak does not depend on the meter and must still be measured.
	if math.IsInf(loudness.TruePeak, -1) {
		t.Error("TruePeak missing after meter failure")
	}
}

func TestPipelineMainsNormalization(t *testing.T) {
	// Anything that is not 60 collapses to 50.
	for _, hz := range []int{0, 45, 50, 55} {
		if p := NewPipeline(&fakeMeter{}, hz); p.mainsHz != 50 {
			t.Errorf("NewPipeline(%d).mainsHz = %d, want 50", hz, p.mainsHz)
		}
	}
	if p := NewPipeline(&fakeMeter{}, 60); p.mainsHz != 60 {
		t.Errorf("NewPipeline(60).mainsHz = %d, want 60", p.mainsHz)
	}
}

func TestPipelineEmptyInput(t *testing.T) {
	p := NewPipeline(&fakeMeter{}, 50)
	if err := p.Run(nil, nil, 44100, nil, nil); err == nil {
		t.Error("empty input: want error")
	}
	if err := p.Run([]float64{0.1}, []float64{0.1}, 0, nil, nil); err == nil {
		t.Error("zero sample rate: want error")
	}
}

func TestMergeFragments(t *testing.T) {
	var r AnalysisResult
	r = r.Merge(Fragment{Loudness: &LoudnessResult{Integrated: -12}})
	r = r.Merge(Fragment{Stereo: &StereoResult{Width: 0.4}})

	if r.Loudness == nil || r.Loudness.Integrated != -12 {
		t.Error("loudness fragment lost in merge")
	}
	if r.Stereo == nil || r.Stereo.Width != 0.4 {
		t.Error("stereo fragment lost in merge")
	}
	if r.Quality != nil {
		t.Error("quality section set without a fragment")
	}

	// A later fragment replaces its own section and nothing else.
	r = r.Merge(Fragment{Loudness: &LoudnessResult{Integrated: -13}})
	if r.Loudness.Integrated != -13 || r.Stereo.Width != 0.4 {
		t.Error("merge replaced the wrong section")
	}
}
