// Package logging renders analysis results for the console and for report
// files. This file provides the console display and the interpretation
// helpers that turn raw numbers into engineering guidance.
package logging

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/analysis"
)

// Targets are the release targets measurements are validated against.
type Targets struct {
	IntegratedLUFS float64 // e.g. -14 for streaming, -16 for podcasts
	TruePeakDBTP   float64 // e.g. -1.0
}

// DefaultTargets matches the common streaming delivery recommendation.
func DefaultTargets() Targets {
	return Targets{IntegratedLUFS: -14.0, TruePeakDBTP: -1.0}
}

// DisplayResult writes the full analysis of one file to w.
func DisplayResult(w io.Writer, result *analysis.AnalysisResult, bpmKey *analysis.BpmKeyResult, targets Targets) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "ANALYSIS: %s\n", result.File.Name)
	fmt.Fprintln(w, strings.Repeat("=", 70))

	fmt.Fprintf(w, "Duration:    %s\n", formatDurationHMS(result.File.Duration))
	fmt.Fprintf(w, "Sample Rate: %d Hz\n", result.File.SampleRate)
	fmt.Fprintf(w, "Channels:    %s\n", channelName(result.File.Channels))
	fmt.Fprintf(w, "Format:      %s\n", result.File.Format)
	fmt.Fprintln(w)

	if result.Loudness != nil {
		writeSection(w, "LOUDNESS")
		table := MetricTable{Rows: []MetricRow{
			{
				Label:          "Integrated",
				Value:          formatLUFS(result.Loudness.Integrated),
				Target:         fmt.Sprintf("%.1f", targets.IntegratedLUFS),
				Unit:           "LUFS",
				Interpretation: interpretLoudness(result.Loudness.Integrated, targets.IntegratedLUFS),
			},
			{
				Label: "Loudness Range",
				Value: fmt.Sprintf("%.1f", result.Loudness.Range),
				Unit:  "LU",
			},
			{
				Label:          "True Peak",
				Value:          formatLUFS(result.Loudness.TruePeak),
				Target:         fmt.Sprintf("%.1f", targets.TruePeakDBTP),
				Unit:           "dBTP",
				Interpretation: interpretTruePeak(result.Loudness.TruePeak, targets.TruePeakDBTP),
			},
		}}
		fmt.Fprint(w, table.String())
		fmt.Fprintln(w)
	}

	if result.Stereo != nil {
		writeSection(w, "STEREO")
		fmt.Fprintf(w, "  Width: %.3f  (%s)\n", result.Stereo.Width, interpretWidth(result.Stereo.Width))
		fmt.Fprintln(w)
	}

	if result.Quality != nil {
		writeSection(w, "QUALITY")
		q := result.Quality
		fmt.Fprintf(w, "  Head Silence:  %.2f s\n", q.HeadSilence)
		fmt.Fprintf(w, "  Tail Silence:  %.2f s\n", q.TailSilence)
		fmt.Fprintf(w, "  First Sample:  %.6f%s\n", q.FirstSample, zeroFlag(q.FirstIsZero))
		fmt.Fprintf(w, "  Last Sample:   %.6f%s\n", q.LastSample, zeroFlag(q.LastIsZero))
		fmt.Fprintf(w, "  Mains Hum:     %s dBFS at %d Hz  (%s)\n",
			formatLevel(q.HumLevel), q.MainsHz, interpretHum(q.HumLevel))
		fmt.Fprintln(w)
	}

	if bpmKey != nil {
		writeSection(w, "TEMPO & KEY")
		if bpmKey.BPM > 0 {
			fmt.Fprintf(w, "  Tempo: %.1f BPM  (%s)\n", bpmKey.BPM, interpretBPMConfidence(bpmKey.BPMConfidence))
		} else {
			fmt.Fprintln(w, "  Tempo: undetermined")
		}
		if bpmKey.Key != "" {
			fmt.Fprintf(w, "  Key:   %s %s  (%s)\n", bpmKey.Key, bpmKey.Scale, interpretKeyStrength(bpmKey.Strength))
		} else {
			fmt.Fprintln(w, "  Key:   undetermined")
		}
		fmt.Fprintln(w)
	}
}

func writeSection(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func zeroFlag(isZero bool) string {
	if isZero {
		return "  (effectively zero)"
	}
	return ""
}

func formatLUFS(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.1f", v)
}

func formatLevel(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%.1f", v)
}

func formatDurationHMS(secs float64) string {
	total := int(secs)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func channelName(n int) string {
	switch n {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	}
	return fmt.Sprintf("%d channels", n)
}

// interpretLoudness compares integrated loudness against the delivery
// target. Platforms normalize downwards, so hot masters lose their level
// advantage and quiet ones get turned up along with their noise floor.
func interpretLoudness(lufs, target float64) string {
	if math.IsInf(lufs, -1) {
		return "silent, not measurable"
	}
	delta := lufs - target
	switch {
	case delta > 2:
		return "hot, will be turned down on normalized platforms"
	case delta > 0.5:
		return "slightly above target"
	case delta >= -0.5:
		return "on target"
	case delta >= -2:
		return "slightly below target"
	default:
		return "quiet, platforms will apply significant gain"
	}
}

// interpretTruePeak flags headroom problems. Lossy encoding adds
// inter-sample overshoot, hence the margin below full scale.
func interpretTruePeak(dbtp, target float64) string {
	if math.IsInf(dbtp, -1) {
		return "silent"
	}
	switch {
	case dbtp > 0:
		return "clipping on inter-sample peaks"
	case dbtp > target:
		return "over target, risky for lossy encoding"
	default:
		return "within headroom"
	}
}

// interpretWidth describes the mid/side balance. Reference points follow
// common mastering practice: narrow below ~0.3, wide above ~0.7, above 1.0
// the sides carry more energy than the centre and mono fold-down suffers.
func interpretWidth(width float64) string {
	switch {
	case width == 0:
		return "mono"
	case width < 0.3:
		return "narrow"
	case width < 0.7:
		return "moderate width"
	case width <= 1.0:
		return "wide"
	default:
		return "very wide, check mono compatibility"
	}
}

// interpretHum classifies mains hum audibility. Below -70 dBFS it sits
// under the noise floor of typical playback; above -50 it is plainly
// audible in quiet passages.
func interpretHum(dbfs float64) string {
	switch {
	case math.IsInf(dbfs, -1), dbfs < -70:
		return "inaudible"
	case dbfs < -50:
		return "low, masked by program material"
	default:
		return "audible, inspect grounding"
	}
}

func interpretBPMConfidence(c float64) string {
	switch {
	case c == 0:
		return "low confidence estimate"
	case c < 0.4:
		return "moderate confidence"
	default:
		return "high confidence"
	}
}

func interpretKeyStrength(s float64) string {
	switch {
	case s < 0.4:
		return "weak tonality"
	case s < 0.7:
		return "moderate certainty"
	default:
		return "strong certainty"
	}
}
