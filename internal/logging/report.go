// Package logging renders analysis results for the console and for report
// files. This file generates the on-disk report for the --logs flag.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/analysis"
)

// ReportData collects everything one report needs.
type ReportData struct {
	InputPath    string
	StartTime    time.Time
	EndTime      time.Time
	Result       *analysis.AnalysisResult
	BpmKey       *analysis.BpmKeyResult
	Targets      Targets
	EngineString string // engine version reported by init
}

// ReportPath derives the report filename next to the input file.
func ReportPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "-analysis.txt"
}

// GenerateReport writes a plain-text analysis report next to the input.
func GenerateReport(data ReportData) error {
	path := ReportPath(data.InputPath)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "NextLight Audio Analyzer report\n")
	fmt.Fprintf(f, "Generated: %s\n", data.EndTime.Format(time.RFC1123))
	fmt.Fprintf(f, "Input:     %s\n", data.InputPath)
	if data.EngineString != "" {
		fmt.Fprintf(f, "Engine:    %s\n", data.EngineString)
	}
	fmt.Fprintf(f, "Elapsed:   %.1fs\n\n", data.EndTime.Sub(data.StartTime).Seconds())

	DisplayResult(f, data.Result, data.BpmKey, data.Targets)

	if data.Result.Loudness != nil && len(data.Result.Loudness.ShortTerm) > 0 {
		writeSection(f, "SHORT-TERM LOUDNESS (1 s spacing)")
		writeSeries(f, data.Result.Loudness.ShortTerm)
		fmt.Fprintln(f)
	}

	return nil
}

// writeSeries prints a loudness series ten values per line.
func writeSeries(f *os.File, series []float64) {
	for i, v := range series {
		if i > 0 && i%10 == 0 {
			fmt.Fprintln(f)
		}
		fmt.Fprintf(f, "%8s", formatLUFS(v))
	}
	fmt.Fprintln(f)
}
