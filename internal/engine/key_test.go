package engine

import (
	"testing"
)

func TestKeyExtractorMinorTriad(t *testing.T) {
	// A minor triad: A3, C4, E4.
	signal := testTriad(220.0, 261.63, 329.63, 3.0, 44100)

	est, err := New().KeyExtractor(signal, 44100, DefaultKeyParams())
	if err != nil {
		t.Fatalf("KeyExtractor failed: %v", err)
	}
	t.Logf("key: %s %s, strength: %.3f", est.Key, est.Scale, est.Strength)

	if est.Key != "A" || est.Scale != "minor" {
		t.Errorf("key = %s %s, want A minor", est.Key, est.Scale)
	}
	if est.Strength <= 0 || est.Strength > 1 {
		t.Errorf("strength = %.3f, want within (0, 1]", est.Strength)
	}
}

func TestKeyExtractorMajorTriad(t *testing.T) {
	// C major triad: C4, E4, G4.
	signal := testTriad(261.63, 329.63, 392.0, 3.0, 44100)

	est, err := New().KeyExtractor(signal, 44100, DefaultKeyParams())
	if err != nil {
		t.Fatalf("KeyExtractor failed: %v", err)
	}
	t.Logf("key: %s %s, strength: %.3f", est.Key, est.Scale, est.Strength)

	if est.Key != "C" || est.Scale != "major" {
		t.Errorf("key = %s %s, want C major", est.Key, est.Scale)
	}
}

func TestKeyExtractorDetunedTriad(t *testing.T) {
	// The same A minor triad detuned by a fifth of a semitone. Detuning
	// correction should shift the reference and still land on A minor.
	detune := 1.0116 // +20 cents
	signal := testTriad(220.0*detune, 261.63*detune, 329.63*detune, 3.0, 44100)

	est, err := New().KeyExtractor(signal, 44100, DefaultKeyParams())
	if err != nil {
		t.Fatalf("KeyExtractor failed: %v", err)
	}
	if est.Key != "A" || est.Scale != "minor" {
		t.Errorf("key = %s %s, want A minor despite detuning", est.Key, est.Scale)
	}
}

func TestKeyExtractorErrors(t *testing.T) {
	e := New()

	if _, err := e.KeyExtractor(make([]float64, 1024), 44100, DefaultKeyParams()); err == nil {
		t.Error("signal shorter than one frame: want error")
	}
	if _, err := e.KeyExtractor(make([]float64, 44100), 44100, DefaultKeyParams()); err == nil {
		t.Error("silence has no tonal content: want error")
	}
	if _, err := e.KeyExtractor(testSine(440, 0.5, 1, 44100), 0, DefaultKeyParams()); err == nil {
		t.Error("zero sample rate: want error")
	}
}

func TestEstimateKeyFromProfile(t *testing.T) {
	e := New()

	// Handcrafted profile with energy only on C, E and G.
	profile := make([]float64, 12)
	profile[0] = 1.0 // C
	profile[4] = 0.9 // E
	profile[7] = 0.9 // G

	est, err := e.EstimateKey(profile)
	if err != nil {
		t.Fatalf("EstimateKey failed: %v", err)
	}
	if est.Key != "C" || est.Scale != "major" {
		t.Errorf("key = %s %s, want C major", est.Key, est.Scale)
	}
}

func TestEstimateKeyErrors(t *testing.T) {
	e := New()

	if _, err := e.EstimateKey(make([]float64, 7)); err == nil {
		t.Error("wrong profile length: want error")
	}
	if _, err := e.EstimateKey(make([]float64, 12)); err == nil {
		t.Error("all-zero profile: want error")
	}
}

func TestKeyProfileTables(t *testing.T) {
	profiles := buildKeyProfiles()
	for _, name := range []string{"krumhansl", "temperley"} {
		pair, ok := profiles[name]
		if !ok {
			t.Fatalf("missing profile table %q", name)
		}
		// The tonic carries the largest weight in every published table.
		for i := 1; i < 12; i++ {
			if pair.major[i] >= pair.major[0] {
				t.Errorf("%s major: weight[%d] >= tonic weight", name, i)
			}
			if pair.minor[i] >= pair.minor[0] {
				t.Errorf("%s minor: weight[%d] >= tonic weight", name, i)
			}
		}
	}
}
