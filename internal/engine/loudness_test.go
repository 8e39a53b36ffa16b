package engine

import (
	"math"
	"testing"
)

func TestLoudnessReferenceTone(t *testing.T) {
	// BS.1770 calibration point: a 997 Hz sine at -23 dBFS in both
	// channels measures -23.0 LUFS. The -0.691 offset cancels the
	// K-weighting gain at that frequency.
	amp := math.Pow(10, -23.0/20)
	left := testSine(997, amp, 5.0, 48000)
	right := testSine(997, amp, 5.0, 48000)

	info, err := New().Loudness(left, right, 48000)
	if err != nil {
		t.Fatalf("Loudness failed: %v", err)
	}
	t.Logf("integrated: %.2f LUFS, range: %.2f LU", info.Integrated, info.Range)

	if math.Abs(info.Integrated-(-23.0)) > 0.5 {
		t.Errorf("Integrated = %.2f LUFS, want -23.0 +/- 0.5", info.Integrated)
	}
	// A steady tone has essentially no loudness range.
	if info.Range > 0.5 {
		t.Errorf("Range = %.2f LU for a steady tone, want < 0.5", info.Range)
	}
	if len(info.Momentary) == 0 {
		t.Error("no momentary series")
	}
	// 5 s at a 1 s short-term spacing.
	if len(info.ShortTerm) < 2 || len(info.ShortTerm) > 4 {
		t.Errorf("short-term series length = %d, want 2-4 for 5 s", len(info.ShortTerm))
	}
}

func TestLoudnessScalesWithLevel(t *testing.T) {
	// Dropping the level 6 dB must drop the reading 6 LU.
	rate := 44100
	loud := testSine(997, 0.2, 4.0, rate)
	quiet := testSine(997, 0.1, 4.0, rate)

	e := New()
	a, err := e.Loudness(loud, loud, rate)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Loudness(quiet, quiet, rate)
	if err != nil {
		t.Fatal(err)
	}

	diff := a.Integrated - b.Integrated
	if math.Abs(diff-6.02) > 0.2 {
		t.Errorf("level difference = %.2f LU, want ~6.02", diff)
	}
}

func TestLoudnessSilenceGatesOut(t *testing.T) {
	left := make([]float64, 44100*2)
	right := make([]float64, 44100*2)

	info, err := New().Loudness(left, right, 44100)
	if err != nil {
		t.Fatalf("Loudness failed: %v", err)
	}
	if !math.IsInf(info.Integrated, -1) {
		t.Errorf("Integrated = %.2f for silence, want -Inf", info.Integrated)
	}
}

func TestLoudnessGatingIgnoresSilentStretch(t *testing.T) {
	// Half tone, half silence. The gate discards the silent blocks, so the
	// reading should stay near the tone's own loudness rather than halving
	// the energy (-3 LU).
	rate := 44100
	amp := math.Pow(10, -23.0/20)
	tone := testSine(997, amp, 4.0, rate)
	signal := append(tone, make([]float64, 4*rate)...)

	info, err := New().Loudness(signal, signal, rate)
	if err != nil {
		t.Fatalf("Loudness failed: %v", err)
	}
	t.Logf("gated: %.2f LUFS", info.Integrated)
	if math.Abs(info.Integrated-(-23.0)) > 1.0 {
		t.Errorf("Integrated = %.2f, want about -23.0 with silence gated out", info.Integrated)
	}
}

func TestLoudnessErrors(t *testing.T) {
	e := New()
	if _, err := e.Loudness(nil, nil, 44100); err == nil {
		t.Error("empty input: want error")
	}
	if _, err := e.Loudness([]float64{0.1}, []float64{0.1}, 0); err == nil {
		t.Error("zero sample rate: want error")
	}
}

func TestLoudnessShortSignal(t *testing.T) {
	// Shorter than one 400 ms block: no series, integrated gates to -Inf.
	signal := testSine(440, 0.5, 0.2, 44100)
	info, err := New().Loudness(signal, signal, 44100)
	if err != nil {
		t.Fatalf("Loudness failed: %v", err)
	}
	if len(info.Momentary) != 0 {
		t.Errorf("momentary series length = %d for 0.2 s input, want 0", len(info.Momentary))
	}
	if !math.IsInf(info.Integrated, -1) {
		t.Errorf("Integrated = %.2f, want -Inf with no measurable blocks", info.Integrated)
	}
}
