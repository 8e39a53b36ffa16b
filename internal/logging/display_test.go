package logging

import (
	"math"
	"strings"
	"testing"

	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/analysis"
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/audio"
)

func sampleResult() *analysis.AnalysisResult {
	return &analysis.AnalysisResult{
		File: audio.FileInfo{
			Name:       "master.wav",
			Duration:   245.7,
			SampleRate: 44100,
			Channels:   2,
			Format:     "WAV",
		},
		Loudness: &analysis.LoudnessResult{
			Integrated: -14.2,
			Range:      6.3,
			TruePeak:   -0.8,
		},
		Stereo: &analysis.StereoResult{Width: 0.45},
		Quality: &analysis.QualityResult{
			HeadSilence: 0.02,
			TailSilence: 1.51,
			FirstIsZero: true,
			HumLevel:    math.Inf(-1),
			MainsHz:     50,
		},
	}
}

func TestDisplayResult(t *testing.T) {
	var sb strings.Builder
	bpmKey := &analysis.BpmKeyResult{BPM: 120.4, BPMConfidence: 0.6, Key: "A", Scale: "minor", Strength: 0.55}

	DisplayResult(&sb, sampleResult(), bpmKey, DefaultTargets())
	out := sb.String()

	for _, want := range []string{
		"ANALYSIS: master.wav",
		"4:05", // 245 s
		"Stereo",
		"LOUDNESS",
		"-14.2",
		"on target",
		"within headroom",
		"Width: 0.450",
		"Mains Hum:     -inf",
		"inaudible",
		"120.4 BPM",
		"A minor",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestDisplayResultUndetermined(t *testing.T) {
	var sb strings.Builder
	result := sampleResult()
	result.Loudness.Integrated = math.Inf(-1)

	DisplayResult(&sb, result, &analysis.BpmKeyResult{}, DefaultTargets())
	out := sb.String()

	if !strings.Contains(out, "-inf") {
		t.Errorf("silent loudness not rendered as -inf\n%s", out)
	}
	if !strings.Contains(out, "Tempo: undetermined") || !strings.Contains(out, "Key:   undetermined") {
		t.Errorf("undetermined tempo/key not rendered\n%s", out)
	}
}

func TestDisplayResultPartialSections(t *testing.T) {
	// A file that failed mid-analysis may only carry some sections.
	var sb strings.Builder
	result := sampleResult()
	result.Stereo = nil
	result.Quality = nil

	DisplayResult(&sb, result, nil, DefaultTargets())
	out := sb.String()

	if strings.Contains(out, "STEREO") || strings.Contains(out, "QUALITY") {
		t.Errorf("missing sections rendered anyway\n%s", out)
	}
	if !strings.Contains(out, "LOUDNESS") {
		t.Errorf("present section not rendered\n%s", out)
	}
}

func TestMetricTableAlignment(t *testing.T) {
	table := MetricTable{Rows: []MetricRow{
		{Label: "Integrated", Value: "-14.2", Target: "-14.0", Unit: "LUFS", Interpretation: "on target"},
		{Label: "Loudness Range", Value: "6.3", Unit: "LU"},
	}}
	out := table.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("table has %d lines, want header + 2 rows:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Measured") || !strings.Contains(lines[0], "Target") {
		t.Errorf("header missing columns: %q", lines[0])
	}
	// A row without a target renders a dash placeholder.
	if !strings.Contains(lines[2], "-  ") {
		t.Errorf("missing target placeholder: %q", lines[2])
	}
}

func TestMetricTableEmpty(t *testing.T) {
	var table MetricTable
	if out := table.String(); out != "" {
		t.Errorf("empty table rendered %q", out)
	}
}

func TestFormatDurationHMS(t *testing.T) {
	tests := []struct {
		secs float64
		want string
	}{
		{0, "0:00"},
		{59.9, "0:59"},
		{65, "1:05"},
		{3671, "1:01:11"},
	}
	for _, tt := range tests {
		if got := formatDurationHMS(tt.secs); got != tt.want {
			t.Errorf("formatDurationHMS(%v) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestInterpretLoudness(t *testing.T) {
	tests := []struct {
		lufs float64
		want string
	}{
		{-10, "hot, will be turned down on normalized platforms"},
		{-13, "slightly above target"},
		{-14, "on target"},
		{-15.5, "slightly below target"},
		{-22, "quiet, platforms will apply significant gain"},
		{math.Inf(-1), "silent, not measurable"},
	}
	for _, tt := range tests {
		if got := interpretLoudness(tt.lufs, -14); got != tt.want {
			t.Errorf("interpretLoudness(%v) = %q, want %q", tt.lufs, got, tt.want)
		}
	}
}

func TestInterpretTruePeak(t *testing.T) {
	if got := interpretTruePeak(0.5, -1); got != "clipping on inter-sample peaks" {
		t.Errorf("positive dBTP: %q", got)
	}
	if got := interpretTruePeak(-0.5, -1); got != "over target, risky for lossy encoding" {
		t.Errorf("over target: %q", got)
	}
	if got := interpretTruePeak(-1.5, -1); got != "within headroom" {
		t.Errorf("within headroom: %q", got)
	}
}

func TestInterpretWidth(t *testing.T) {
	tests := []struct {
		width float64
		want  string
	}{
		{0, "mono"},
		{0.2, "narrow"},
		{0.5, "moderate width"},
		{0.9, "wide"},
		{1.4, "very wide, check mono compatibility"},
	}
	for _, tt := range tests {
		if got := interpretWidth(tt.width); got != tt.want {
			t.Errorf("interpretWidth(%v) = %q, want %q", tt.width, got, tt.want)
		}
	}
}

func TestReportPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"album/track.wav", "album/track-analysis.txt"},
		{"mix.flac", "mix-analysis.txt"},
		{"noext", "noext-analysis.txt"},
	}
	for _, tt := range tests {
		if got := ReportPath(tt.in); got != tt.want {
			t.Errorf("ReportPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
