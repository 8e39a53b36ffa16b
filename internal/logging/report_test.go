package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/analysis"
)

func TestGenerateReport(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "track.wav")

	result := sampleResult()
	result.Loudness.ShortTerm = []float64{-14.1, -14.3, -13.9, -14.0, -14.2, -14.1, -14.4, -13.8, -14.0, -14.1, -14.2}

	data := ReportData{
		InputPath:    input,
		StartTime:    time.Now().Add(-3 * time.Second),
		EndTime:      time.Now(),
		Result:       result,
		BpmKey:       &analysis.BpmKeyResult{BPM: 98, BPMConfidence: 0.3, Key: "Eb", Scale: "major", Strength: 0.5},
		Targets:      DefaultTargets(),
		EngineString: "nextlight-dsp 1.4.2",
	}
	if err := GenerateReport(data); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "track-analysis.txt"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	out := string(raw)

	for _, want := range []string{
		"NextLight Audio Analyzer report",
		"nextlight-dsp 1.4.2",
		"ANALYSIS: master.wav",
		"SHORT-TERM LOUDNESS",
		"98.0 BPM",
		"Eb major",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// Eleven short-term values wrap onto a second line.
	series := out[strings.Index(out, "SHORT-TERM"):]
	if strings.Count(series, "\n") < 3 {
		t.Errorf("short-term series not wrapped:\n%s", series)
	}
}

func TestGenerateReportBadPath(t *testing.T) {
	data := ReportData{
		InputPath: filepath.Join(t.TempDir(), "missing", "track.wav"),
		Result:    sampleResult(),
		Targets:   DefaultTargets(),
	}
	if err := GenerateReport(data); err == nil {
		t.Error("unwritable report path: want error")
	}
}
