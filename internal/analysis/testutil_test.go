package analysis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/engine"
)

// fakeMeter is a controllable LoudnessMeter.
type fakeMeter struct {
	err   error
	info  engine.LoudnessInfo
	panic bool
	block chan struct{} // when non-nil, Loudness waits for it to close
}

func (f *fakeMeter) Loudness(left, right []float64, sampleRate int) (engine.LoudnessInfo, error) {
	if f.block != nil {
		<-f.block
	}
	if f.panic {
		panic("meter exploded")
	}
	if f.err != nil {
		return engine.LoudnessInfo{}, f.err
	}
	return f.info, nil
}

// fakeTempoKey is a controllable TempoKeyAnalyzer. Each tier can be failed
// independently; the fallback spectral primitives are simple canned
// implementations. Method invocations are recorded for order assertions.
type fakeTempoKey struct {
	mu    sync.Mutex
	calls []string

	rhythmErr  error
	rhythmBPM  float64
	rhythmConf float64

	onsetErr error
	onsetBPM float64

	keyErr error
	keyEst engine.KeyEstimate

	noPeaks     bool
	estimateErr error
	estimateEst engine.KeyEstimate
}

func (f *fakeTempoKey) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeTempoKey) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeTempoKey) RhythmExtractor(samples []float64, sampleRate int, opts engine.RhythmOptions) (float64, float64, error) {
	f.record("rhythm")
	if f.rhythmErr != nil {
		return 0, 0, f.rhythmErr
	}
	return f.rhythmBPM, f.rhythmConf, nil
}

func (f *fakeTempoKey) OnsetTempo(samples []float64, sampleRate int) (float64, error) {
	f.record("onset")
	if f.onsetErr != nil {
		return 0, f.onsetErr
	}
	return f.onsetBPM, nil
}

func (f *fakeTempoKey) KeyExtractor(samples []float64, sampleRate int, params engine.KeyParams) (engine.KeyEstimate, error) {
	f.record("key")
	if f.keyErr != nil {
		return engine.KeyEstimate{}, f.keyErr
	}
	return f.keyEst, nil
}

func (f *fakeTempoKey) Windowing(frame []float64, name string) []float64 {
	out := make([]float64, len(frame))
	copy(out, frame)
	return out
}

func (f *fakeTempoKey) Spectrum(frame []float64) []float64 {
	return make([]float64, len(frame)/2+1)
}

func (f *fakeTempoKey) SpectralPeaks(spectrum []float64, sampleRate int, params engine.PeakParams) []engine.Peak {
	if f.noPeaks {
		return nil
	}
	return []engine.Peak{{Frequency: 440, Magnitude: 1}}
}

func (f *fakeTempoKey) HPCP(peaks []engine.Peak, params engine.HPCPParams) ([]float64, error) {
	profile := make([]float64, params.Size)
	profile[9] = 1
	return profile, nil
}

func (f *fakeTempoKey) EstimateKey(profile []float64) (engine.KeyEstimate, error) {
	f.record("estimate")
	if f.estimateErr != nil {
		return engine.KeyEstimate{}, f.estimateErr
	}
	return f.estimateEst, nil
}

// fakeEngine composes the fakes into a full orchestrator Engine.
type fakeEngine struct {
	fakeMeter
	fakeTempoKey

	initCalls int32
	initErrs  int32 // fail this many leading Init calls
	version   string
}

func (f *fakeEngine) Init(ctx context.Context) (string, error) {
	n := atomic.AddInt32(&f.initCalls, 1)
	if n <= atomic.LoadInt32(&f.initErrs) {
		return "", errors.New("engine offline")
	}
	if f.version == "" {
		return "fake-dsp 0.0.0", nil
	}
	return f.version, nil
}
